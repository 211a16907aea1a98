package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/settsim/internal/presentation/graph"
	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/vault"
)

// Report summarizes one simulation run.
type Report struct {
	RunID     string
	Strategy  string
	Seed      int64
	UserCount int
	// Requested is the number of actions asked for, recorded even when randomization fails.
	Requested int
	// ConfigPath is the run profile the run was loaded from, if any.
	ConfigPath string
	Actors    []string
	Actions   []domain.Action
	Final     *vault.State
	Err       error
}

// Markdown renders the report. A failed run ends with the command that replays it.
func (r Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Simulation %s\n\n", r.Strategy)
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Run | `%s` |\n", r.RunID)
	fmt.Fprintf(&b, "| Seed | `%d` |\n", r.Seed)
	fmt.Fprintf(&b, "| Users | %d |\n", r.UserCount)
	fmt.Fprintf(&b, "| Actors | %d |\n", len(r.Actors))
	fmt.Fprintf(&b, "| Actions | %d |\n\n", len(r.Actions))

	if counts := countKinds(r.Actions); len(counts) > 0 {
		b.WriteString("## Actions\n\n| Kind | Count |\n|---|---|\n")
		kinds := make([]string, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(&b, "| %s | %d |\n", k, counts[domain.ActionKind(k)])
		}
		b.WriteString("\n")

		var overlay *graph.Overlay
		var execErr *domain.ExecutionError
		if errors.As(r.Err, &execErr) {
			overlay = &graph.Overlay{Failed: &execErr.Action}
		}
		fmt.Fprintf(&b, "## Action flow\n\n```mermaid\n%s```\n\n", graph.GenerateMermaid(r.Actions, overlay))
	}

	if r.Final != nil {
		b.WriteString("## Final state\n\n| Quantity | Value |\n|---|---|\n")
		fmt.Fprintf(&b, "| Share supply | %s |\n", r.Final.Supply.Dec())
		fmt.Fprintf(&b, "| Vault idle | %s |\n", r.Final.VaultIdle.Dec())
		fmt.Fprintf(&b, "| Strategy loose | %s |\n", r.Final.StrategyLoose.Dec())
		fmt.Fprintf(&b, "| Strategy deployed | %s |\n", r.Final.StrategyDeployed.Dec())
		fmt.Fprintf(&b, "| Accrued yield | %s |\n", r.Final.Accrued.Dec())
		fmt.Fprintf(&b, "| Clock | %s |\n\n", r.Final.Clock)
	}

	if r.Err == nil {
		b.WriteString("**Result:** all actions succeeded.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "**Result:** failed: %s\n\n", r.Err)
	var execErr *domain.ExecutionError
	if errors.As(r.Err, &execErr) {
		fmt.Fprintf(&b, "Failing action `%d`: `%s`\n\n", execErr.Index, execErr.Action)
	}
	fmt.Fprintf(&b, "Replay with:\n\n```\n%s\n```\n", r.ReplayCommand())
	return b.String()
}

func countKinds(actions []domain.Action) map[domain.ActionKind]int {
	counts := make(map[domain.ActionKind]int)
	for _, a := range actions {
		counts[a.Kind]++
	}
	return counts
}

// ReplayCommand is the settsim invocation that regenerates this run's action sequence.
func (r Report) ReplayCommand() string {
	cmd := fmt.Sprintf("settsim run --strategy %s --seed %d --users %d --actions %d",
		r.Strategy, r.Seed, r.UserCount, r.Requested)
	if r.ConfigPath != "" {
		cmd += " --config " + r.ConfigPath
	}
	return cmd
}
