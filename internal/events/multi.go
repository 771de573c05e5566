package events

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Multi fans an event out to several publishers concurrently.
type Multi []Publisher

// Publish sends e to every publisher and joins the failures. One failing
// sink does not stop delivery to the others.
func (m Multi) Publish(ctx context.Context, e Event) error {
	errs := make([]error, len(m))
	var g errgroup.Group
	for i, p := range m {
		g.Go(func() error {
			if err := p.Publish(ctx, e); err != nil {
				errs[i] = fmt.Errorf("publisher %d: %w", i, err)
			}
			return errs[i]
		})
	}
	// Wait reports only the first failure; join them all.
	if err := g.Wait(); err == nil {
		return nil
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
