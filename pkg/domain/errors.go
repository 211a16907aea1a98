package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidState is returned when a phase operation is called out of lifecycle order.
var ErrInvalidState = errors.New("invalid simulation state")

// ErrUnknownStrategy is returned when no provisioner is registered for a strategy name.
var ErrUnknownStrategy = errors.New("no provisioner registered for strategy")

// ErrActorExhausted is returned when an actor cannot propose any legal action.
var ErrActorExhausted = errors.New("actor has no legal action")

// ErrExecution is returned when an action fails against the target system.
var ErrExecution = errors.New("action execution failed")

// ErrManagerFailed is returned by every phase after an earlier phase failed part way.
var ErrManagerFailed = errors.New("simulation manager failed")

// ErrPoolTooSmall is returned when fewer identities are available than requested.
var ErrPoolTooSmall = errors.New("identity pool smaller than requested user count")

// ErrSamplingExhausted is returned when identity sampling exceeds its attempt limit.
var ErrSamplingExhausted = errors.New("identity sampling exceeded attempt limit")

// StateError reports a phase operation invoked in the wrong lifecycle state.
type StateError struct {
	Op       string
	Expected SimulationState
	Actual   SimulationState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invalid state for %s: expected %s, got %s", e.Op, e.Expected, e.Actual)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// ConfigurationError is a fatal error detected while constructing a simulation.
type ConfigurationError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ActorError wraps a failure raised by a named actor while generating an action.
type ActorError struct {
	Actor string
	Err   error
}

func (e *ActorError) Error() string {
	return fmt.Sprintf("actor %s: %v", e.Actor, e.Err)
}

func (e *ActorError) Unwrap() error {
	return e.Err
}

// ExecutionError carries everything needed to reproduce a failed run:
// the seed, the position of the failing action and the action itself.
type ExecutionError struct {
	Seed   int64
	Index  int
	Action Action
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("action %d (%s) failed (seed=%d): %v", e.Index, e.Action, e.Seed, e.Err)
}

func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecution
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
