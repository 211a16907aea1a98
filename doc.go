/*
Package settsim is a seeded, replayable simulation engine for vault/strategy deployments.

A simulation draws a set of identities, funds them, generates a random but legal sequence of
actions from a roster of actors and replays that sequence against the target. Everything random
comes from one seeded source, so a failing run is reproduced by passing its seed back in.

# Lifecycle

A Simulation moves strictly forward through four phases:

	Idle -> Provisioned -> Randomized -> Running

Calling a phase out of order returns a *domain.StateError. Run stops at the first failing action
and returns a *domain.ExecutionError carrying the seed, the index and the action.

# Usage

	ctx := context.Background()
	dep, err := settsim.Deploy(ctx, memory.NewStore(), settsim.DeploymentConfig{
		Strategy: "StrategyDiggRewards",
	})
	if err != nil {
		log.Fatal(err)
	}

	sim, err := settsim.New(dep.Ledger, dep.Dispatcher, dep.Pool, settsim.WithSeed(42))
	if err != nil {
		log.Fatal(err)
	}

	if err := sim.Simulate(ctx, 50); err != nil {
		log.Fatalf("replay with --seed %d: %v", sim.Seed(), err)
	}

# Extension Points

  - ports.TargetSystem and ports.ActionDispatcher connect the engine to any deployment.
  - registry.Registry maps strategy names to ports.Provisioner factories.
  - domain.LifecycleHooks observe phase changes and every generated or executed action.
*/
package settsim
