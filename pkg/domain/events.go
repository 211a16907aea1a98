package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPhaseEnter      EventType = "phase_enter"
	EventActionGenerated EventType = "action_generated"
	EventActionExecuted  EventType = "action_executed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	Seed      int64     `json:"seed"`
}

// PhaseEvent represents a lifecycle transition.
type PhaseEvent struct {
	EventBase
	From SimulationState `json:"from"`
	To   SimulationState `json:"to"`
}

// ActionEvent represents an action being generated or executed.
type ActionEvent struct {
	EventBase
	Index  int    `json:"index"`
	Action Action `json:"action"`
	Err    error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnPhaseEnter      func(context.Context, *PhaseEvent)
	OnActionGenerated func(context.Context, *ActionEvent)
	OnActionExecuted  func(context.Context, *ActionEvent)
}

// ChainHooks combines several hook sets; each callback runs in argument order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, e *PhaseEvent) {
			for _, h := range hooks {
				if h.OnPhaseEnter != nil {
					h.OnPhaseEnter(ctx, e)
				}
			}
		},
		OnActionGenerated: func(ctx context.Context, e *ActionEvent) {
			for _, h := range hooks {
				if h.OnActionGenerated != nil {
					h.OnActionGenerated(ctx, e)
				}
			}
		},
		OnActionExecuted: func(ctx context.Context, e *ActionEvent) {
			for _, h := range hooks {
				if h.OnActionExecuted != nil {
					h.OnActionExecuted(ctx, e)
				}
			}
		},
	}
}
