// Package resource pairs a per-client list registry with the mutation flow
// that keeps it in step with the API.
package resource

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal"
	"github.com/frahmantamala/tandengan-portal/internal/listing"
	"github.com/frahmantamala/tandengan-portal/internal/mutation"
	"github.com/frahmantamala/tandengan-portal/internal/notify"
)

const anonymousKey = "anonymous"

type Config[T any] struct {
	// Label is the singular noun used in notices ("Announcement").
	Label    string
	Strategy mutation.Strategy
	List     listing.Options[T]
	Notifier notify.Notifier
	Logger   *slog.Logger
}

type Resource[T any] struct {
	label    string
	strategy mutation.Strategy
	notifier notify.Notifier
	logger   *slog.Logger
	lists    *listing.Registry[T]
}

func New[T any](cfg Config[T]) *Resource[T] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	opts := cfg.List
	opts.Notifier = cfg.Notifier
	opts.Logger = cfg.Logger

	return &Resource[T]{
		label:    cfg.Label,
		strategy: cfg.Strategy,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		lists: listing.NewRegistry(func(string) *listing.Controller[T] {
			return listing.New(opts)
		}),
	}
}

// ClientKey is the registry key of the caller in ctx.
func ClientKey(ctx context.Context) string {
	if k := internal.ClientKeyFromContext(ctx); k != "" {
		return k
	}
	return anonymousKey
}

// List is the caller's controller.
func (r *Resource[T]) List(ctx context.Context) *listing.Controller[T] {
	return r.lists.For(ClientKey(ctx))
}

// Flow is a mutation flow bound to the caller's controller.
func (r *Resource[T]) Flow(ctx context.Context) *mutation.Flow[T] {
	return mutation.New[T](r.List(ctx), r.strategy, r.notifier, r.label, r.logger)
}

func (r *Resource[T]) Registry() *listing.Registry[T] {
	return r.lists
}

func (r *Resource[T]) Label() string {
	return r.label
}

// Forget drops the list state of an ended session.
func (r *Resource[T]) Forget(_ context.Context, sessionID string) {
	r.lists.Drop(internal.SessionClientKey(sessionID))
}

// Sweep drops list state left idle for longer than idle.
func (r *Resource[T]) Sweep(idle time.Duration) int {
	return r.lists.Sweep(idle)
}
