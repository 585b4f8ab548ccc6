// Package live streams admin snapshot feeds over websockets.
package live

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/essyessentials/storefront-backend/api/responses"
	internallive "github.com/essyessentials/storefront-backend/internal/live"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Frame is one snapshot pushed to the client. Every frame carries the full
// collection, never a diff.
type Frame[T any] struct {
	Topic string    `json:"topic"`
	At    time.Time `json:"at"`
	Data  []T       `json:"data"`
}

// Topics dispatches GET /live/{topic} to the stream registered for topic.
func Topics(streams map[string]http.HandlerFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := chi.URLParam(r, "topic")
		stream, ok := streams[topic]
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "unknown topic"))
			return
		}
		stream(w, r)
	}
}

// NewUpgrader accepts the configured origins; "*" accepts any.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			wildcard = true
		}
		allowed[strings.ToLower(origin)] = struct{}{}
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if wildcard || origin == "" {
				return true
			}
			_, ok := allowed[strings.ToLower(origin)]
			return ok
		},
	}
}

// Stream subscribes the connection to feed until the client goes away. The
// first frame is the current snapshot.
func Stream[T any](topic string, feed *internallive.Feed[T], upgrader *websocket.Upgrader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// the upgrader has already written the HTTP error
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "live.upgrade_failed")
			}
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
		defer cancel()
		if logg != nil {
			ctx = logg.WithField(ctx, "topic", topic)
		}

		sub, err := feed.Subscribe(ctx)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "live.subscribe_failed", err)
			}
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "snapshot unavailable"),
				time.Now().Add(writeWait))
			return
		}
		defer sub.Close()

		if logg != nil {
			logg.Info(ctx, "live.connected")
		}
		go readPump(conn, cancel)
		writePump(ctx, conn, topic, sub)
		if logg != nil {
			logg.Info(ctx, "live.disconnected")
		}
	}
}

// readPump drains client frames so pongs and close frames are processed. It
// cancels the stream once the connection fails.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump[T any](ctx context.Context, conn *websocket.Conn, topic string, sub *internallive.Subscription[T]) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case snapshot, ok := <-sub.C():
			if !ok {
				return
			}
			if snapshot == nil {
				snapshot = []T{}
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(Frame[T]{Topic: topic, At: time.Now().UTC(), Data: snapshot}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
