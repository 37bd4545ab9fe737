package alert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Notifier delivers an alert to an external transport.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// LogNotifier is the stub transport: it prints the alert.
type LogNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewLogNotifier prints to out, or to stdout when out is nil.
func NewLogNotifier(out io.Writer) *LogNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &LogNotifier{out: out}
}

func (n *LogNotifier) Notify(ctx context.Context, a Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := fmt.Fprintf(n.out, "Sending alert...\nCity: %s\nMessage: %s\n", a.City, a.Message)
	return err
}

// MultiNotifier fans an alert out to several transports. Every transport is
// attempted; errors are joined.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, a Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
