package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/settsim/pkg/domain"
)

// LogHooks logs phase changes at info level and every action at debug level.
// Failed actions are logged at error level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, e *domain.PhaseEvent) {
			logger.InfoContext(ctx, "phase_enter", "from", e.From.String(), "to", e.To.String(), "seed", e.Seed)
		},
		OnActionGenerated: func(ctx context.Context, e *domain.ActionEvent) {
			logger.DebugContext(ctx, "action_generated", "index", e.Index, "actor", e.Action.Actor, "kind", e.Action.Kind)
		},
		OnActionExecuted: func(ctx context.Context, e *domain.ActionEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "action_executed", "index", e.Index, "action", e.Action.String(), "error", e.Err)
				return
			}
			logger.DebugContext(ctx, "action_executed", "index", e.Index, "actor", e.Action.Actor, "kind", e.Action.Kind)
		},
	}
}
