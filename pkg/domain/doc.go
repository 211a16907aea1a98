/*
Package domain contains the core value types of the simulation engine.

It defines the lifecycle states of a simulation, the immutable Action records that actors
propose, the privileged roles of a target deployment and the errors the engine reports.
This package is kept free of I/O so it can be shared by the engine, the actors and every
adapter.

# Key Entities

  - SimulationState: The linear lifecycle (Idle, Provisioned, Randomized, Running).
  - Action: A validated, immutable unit of work proposed by an actor.
  - Roles: The administrative identities that control a target deployment.
  - LifecycleHooks: Callbacks for observing phase changes and action progress.
*/
package domain
