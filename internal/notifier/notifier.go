package notifier

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Notifier delivers a formatted report.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Console writes reports to a writer, normally stdout.
type Console struct {
	mu  sync.Mutex
	Out io.Writer
}

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{Out: out}
}

func (c *Console) Notify(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.Out, text); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Multi fans a report out to several notifiers and returns the first error.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, text string) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, text); err != nil && first == nil {
			first = err
		}
	}
	return first
}
