package checkout

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestPostCommitRunsEveryTask(t *testing.T) {
	logs := &bytes.Buffer{}
	runner, err := NewPostCommit(nil, testLogger(logs))
	if err != nil {
		t.Fatalf("NewPostCommit: %v", err)
	}

	var ran []string
	task := func(name string, err error) Task {
		return Task{Name: name, Run: func(ctx context.Context) error {
			ran = append(ran, name)
			return err
		}}
	}

	err = runner.Run(context.Background(), []Task{
		task("stock_decrement", errors.New("db gone")),
		task("customer_email", nil),
		{Name: "admin_email", Run: func(ctx context.Context) error { panic("template missing") }},
		task("clear_cart", errors.New("redis gone")),
	})

	if strings.Join(ran, ",") != "stock_decrement,customer_email,clear_cart" {
		t.Fatalf("unexpected run order %v", ran)
	}
	if got := len(multierr.Errors(err)); got != 3 {
		t.Fatalf("expected 3 combined errors, got %d: %v", got, err)
	}
	if strings.Count(logs.String(), "checkout.post_commit.failed") != 3 {
		t.Fatalf("expected each failure logged, got %s", logs.String())
	}
}

func TestPostCommitIgnoresCallerCancellation(t *testing.T) {
	runner, err := NewPostCommit(nil, testLogger(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("NewPostCommit: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawErr error
	_ = runner.Run(ctx, []Task{{Name: "customer_email", Run: func(ctx context.Context) error {
		sawErr = ctx.Err()
		return nil
	}}})
	if sawErr != nil {
		t.Fatalf("task context must not be cancelled, got %v", sawErr)
	}
}
