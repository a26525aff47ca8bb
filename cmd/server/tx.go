package main

import "context"

// boundTx adapts a backend's RunInTx, which hands out the concrete backend,
// to a service's Tx, which expects that service's own Store interface.
type boundTx[B, S any] struct {
	run  func(ctx context.Context, fn func(B) error) error
	bind func(B) S
}

func (t boundTx[B, S]) RunInTx(ctx context.Context, fn func(store S) error) error {
	return t.run(ctx, func(b B) error {
		return fn(t.bind(b))
	})
}

func newTx[B, S any](run func(ctx context.Context, fn func(B) error) error, bind func(B) S) boundTx[B, S] {
	return boundTx[B, S]{run: run, bind: bind}
}
