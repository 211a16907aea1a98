package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/settsim/pkg/domain"
)

// Overlay contains run outcome data to visualize on the graph.
type Overlay struct {
	// Failed is the action the run stopped at, if any.
	Failed *domain.Action
}

// GenerateMermaid produces a Mermaid flowchart of which actor groups proposed which action
// kinds, labelling each edge with its count. Per-identity actors ("user:0x..") collapse into
// their group. Shapes:
// - Actor group: [Rectangle]
// - Time actor: ((Circle))
// - Action kind: (Rounded)
func GenerateMermaid(actions []domain.Action, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	edges := make(map[[2]string]int)
	var groups, kinds []string
	seenGroup := make(map[string]bool)
	seenKind := make(map[string]bool)
	for _, a := range actions {
		g, k := actorGroup(a.Actor), string(a.Kind)
		edges[[2]string{g, k}]++
		if !seenGroup[g] {
			seenGroup[g] = true
			groups = append(groups, g)
		}
		if !seenKind[k] {
			seenKind[k] = true
			kinds = append(kinds, k)
		}
	}
	sort.Strings(groups)
	sort.Strings(kinds)

	for _, g := range groups {
		opener, closer := "[", "]"
		if g == "chain" {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID("actor_"+g), opener, g, closer)
	}
	for _, k := range kinds {
		fmt.Fprintf(&sb, "    %s(\"%s\")\n", sanitizeMermaidID("kind_"+k), k)
	}

	keys := make([][2]string, 0, len(edges))
	for e := range edges {
		keys = append(keys, e)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, e := range keys {
		fmt.Fprintf(&sb, "    %s -- \"%d\" --> %s\n",
			sanitizeMermaidID("actor_"+e[0]), edges[e], sanitizeMermaidID("kind_"+e[1]))
	}

	if overlay != nil && overlay.Failed != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s failed;\n", sanitizeMermaidID("actor_"+actorGroup(overlay.Failed.Actor)))
		fmt.Fprintf(&sb, "    class %s failed;\n", sanitizeMermaidID("kind_"+string(overlay.Failed.Kind)))
	}

	return sb.String()
}

// actorGroup strips the per-instance suffix from names like "user:0xab.." or "param:min".
func actorGroup(name string) string {
	group, _, _ := strings.Cut(name, ":")
	return group
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
