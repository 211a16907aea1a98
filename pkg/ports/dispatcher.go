package ports

import (
	"context"

	"github.com/aretw0/settsim/pkg/domain"
)

// ActionDispatcher defines how recorded actions are executed.
// The engine emits actions in order, and the host implements this interface to perform them.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, action domain.Action) error
}

// DispatcherFunc adapts a function to ActionDispatcher.
type DispatcherFunc func(ctx context.Context, action domain.Action) error

func (f DispatcherFunc) Dispatch(ctx context.Context, action domain.Action) error {
	return f(ctx, action)
}

// SnapshotComparer is the state-comparison collaborator consumed by dispatchers.
// Compare captures the target state, runs exec, captures it again and checks the
// invariants expected for action.
type SnapshotComparer interface {
	Compare(ctx context.Context, action domain.Action, exec func(context.Context) error) error
}
