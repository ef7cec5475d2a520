// Package mutation runs create, update and delete calls against the API and
// reconciles the local list afterwards.
package mutation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
)

type Strategy int

const (
	// OptimisticPatch merges the API result into the local list by id.
	OptimisticPatch Strategy = iota
	// FullReload refetches the whole collection.
	FullReload
)

func (s Strategy) String() string {
	if s == FullReload {
		return "full_reload"
	}
	return "optimistic_patch"
}

// Target is the local state a flow reconciles; *listing.Controller satisfies it.
type Target[T any] interface {
	Upsert(item T)
	Remove(id string) bool
	Load(ctx context.Context) error
}

type Flow[T any] struct {
	target   Target[T]
	strategy Strategy
	notifier notify.Notifier
	label    string
	logger   *slog.Logger
}

// New builds a flow for one resource; label is the singular noun used in
// notices ("Announcement").
func New[T any](target Target[T], strategy Strategy, notifier notify.Notifier, label string, logger *slog.Logger) *Flow[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow[T]{target: target, strategy: strategy, notifier: notifier, label: label, logger: logger}
}

func (f *Flow[T]) notify(ctx context.Context, notices ...notify.Notice) {
	if f.notifier != nil {
		f.notifier.Notify(ctx, notices...)
	}
}

func (f *Flow[T]) fail(ctx context.Context, op string, err error) error {
	f.logger.Error("mutation failed", "resource", f.label, "op", op, "error", err)
	f.notify(ctx, notify.FromError(err, fmt.Sprintf("Failed to %s %s.", op, f.label))...)
	return notify.Reported(err)
}

func (f *Flow[T]) reconcile(ctx context.Context, apply func()) {
	if f.strategy == FullReload {
		// Load raises its own notice on failure; the mutation itself succeeded.
		_ = f.target.Load(ctx)
		return
	}
	apply()
}

func (f *Flow[T]) Create(ctx context.Context, call func(ctx context.Context) (T, error)) (T, error) {
	item, err := call(ctx)
	if err != nil {
		var zero T
		return zero, f.fail(ctx, "create", err)
	}
	f.reconcile(ctx, func() { f.target.Upsert(item) })
	f.notify(ctx, notify.Success(fmt.Sprintf("%s created successfully.", f.label)))
	return item, nil
}

func (f *Flow[T]) Update(ctx context.Context, call func(ctx context.Context) (T, error)) (T, error) {
	item, err := call(ctx)
	if err != nil {
		var zero T
		return zero, f.fail(ctx, "update", err)
	}
	f.reconcile(ctx, func() { f.target.Upsert(item) })
	f.notify(ctx, notify.Success(fmt.Sprintf("%s updated successfully.", f.label)))
	return item, nil
}

// Delete fires only once the caller has confirmed. The local removal is a
// no-op when id is not held locally, even though the API call still runs.
func (f *Flow[T]) Delete(ctx context.Context, id string, confirmed bool, call func(ctx context.Context) error) error {
	if !confirmed {
		return internal.ErrConfirmationRequired
	}
	if err := call(ctx); err != nil {
		return f.fail(ctx, "delete", err)
	}
	f.reconcile(ctx, func() { f.target.Remove(id) })
	f.notify(ctx, notify.Success(fmt.Sprintf("%s deleted successfully.", f.label)))
	return nil
}

// Patch applies a local change before the call and reverts it if the call
// fails. It is the only rollback path; other mutations keep their local
// state on failure.
func (f *Flow[T]) Patch(ctx context.Context, apply, revert func(), call func(ctx context.Context) error) error {
	apply()
	if err := call(ctx); err != nil {
		revert()
		return f.fail(ctx, "update", err)
	}
	return nil
}
