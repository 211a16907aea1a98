/*
Package ports defines the driven ports (interfaces) of the simulation engine.

These interfaces decouple the engine from the system under test, allowing the same
lifecycle, sampling and actor logic to drive an in-memory ledger, a Redis-backed ledger or
any other deployment that can fund identities and execute actions.

# Key Interfaces

  - TargetSystem: The deployment under test (roles, observable balances, funding).
  - Actor: Proposes the next legal action for one role or identity.
  - Provisioner: Establishes the initial balances each identity needs.
  - ActionDispatcher: Executes one recorded action against the target.
  - SnapshotComparer: Asserts invariants around an executed action.
  - LedgerStore: Key/value persistence for the reference ledger.
  - DistributedLocker: Guards a deployment against concurrent simulations.
*/
package ports
