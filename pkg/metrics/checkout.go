package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order placement, post-commit task and status change activity.
type CheckoutMetrics struct {
	placed        *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	taskDuration  *prometheus.HistogramVec
	taskSuccess   *prometheus.CounterVec
	taskFailure   *prometheus.CounterVec
	oversell      prometheus.Counter
	statusChanges *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Orders persisted by checkout.",
	}, []string{"shipping_option", "status"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_placement_rejected_total",
		Help: "Order placements rejected before or during persistence.",
	}, []string{"reason"})
	taskDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_post_commit_task_duration_seconds",
		Help:    "Duration of post-commit checkout tasks in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})
	taskSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_post_commit_task_success_total",
		Help: "Successful post-commit checkout tasks.",
	}, []string{"task"})
	taskFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_post_commit_task_failure_total",
		Help: "Failed post-commit checkout tasks.",
	}, []string{"task"})
	oversell := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_stock_oversell_total",
		Help: "Stock decrements that requested more units than were available.",
	})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_status_changes_total",
		Help: "Admin order status changes by target status.",
	}, []string{"status"})
	reg.MustRegister(placed, rejected, taskDuration, taskSuccess, taskFailure, oversell, statusChanges)
	return &CheckoutMetrics{
		placed:        placed,
		rejected:      rejected,
		taskDuration:  taskDuration,
		taskSuccess:   taskSuccess,
		taskFailure:   taskFailure,
		oversell:      oversell,
		statusChanges: statusChanges,
	}
}

func (c *CheckoutMetrics) IncPlaced(shippingOption, status string) {
	if c == nil || c.placed == nil {
		return
	}
	c.placed.WithLabelValues(normalizeLabel(shippingOption), normalizeLabel(status)).Inc()
}

func (c *CheckoutMetrics) IncRejected(reason string) {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveTask records the outcome and duration of one post-commit task.
func (c *CheckoutMetrics) ObserveTask(task string, duration time.Duration, err error) {
	if c == nil || c.taskDuration == nil {
		return
	}
	task = normalizeLabel(task)
	c.taskDuration.WithLabelValues(task).Observe(duration.Seconds())
	if err != nil {
		c.taskFailure.WithLabelValues(task).Inc()
		return
	}
	c.taskSuccess.WithLabelValues(task).Inc()
}

func (c *CheckoutMetrics) IncOversell() {
	if c == nil || c.oversell == nil {
		return
	}
	c.oversell.Inc()
}

func (c *CheckoutMetrics) IncStatusChange(status string) {
	if c == nil || c.statusChanges == nil {
		return
	}
	c.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
