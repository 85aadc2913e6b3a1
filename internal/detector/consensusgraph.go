package detector

import (
	"fmt"

	graph "github.com/Emeline-1/basic_graph"

	"github.com/DNSBelgium/qlad/internal/ident"
)

// ConsensusGraph is the `--log-consensus-graph` diagnostic (§11/§13): one
// edge `engine_i -> identifier` per identifier each Engine flagged, so the
// connected components answer "which identifiers were flagged by
// overlapping sets of engines" without changing the intersection
// semantics of §4.8. Grounded on the teacher's overlays_processing.go/
// rib_analysis.go use of github.com/Emeline-1/basic_graph
// (`graph.New`, `Add_edge`, `Set_iterator`/`Next_connected_component`).
//
// Built eagerly in BuildConsensusGraph rather than keeping the
// third-party graph handle around: a Detector builds exactly one of
// these per tick and only ever reads its connected components afterward.
type ConsensusGraph struct {
	components [][]string
}

// BuildConsensusGraph adds one `engine_i -> identifier.String()` edge for
// every identifier engine i flagged, then walks the resulting graph's
// connected components.
func BuildConsensusGraph(perEngineAnomalies [][]ident.Identifier) *ConsensusGraph {
	g := graph.New()
	for i, ids := range perEngineAnomalies {
		engineNode := fmt.Sprintf("engine_%d", i)
		for _, id := range ids {
			g.Add_edge(engineNode, id.String())
		}
	}

	var components [][]string
	g.Set_iterator()
	for g.Next_connected_component() {
		component := g.Connected_component()
		cp := make([]string, len(component))
		copy(cp, component)
		components = append(components, cp)
	}
	return &ConsensusGraph{components: components}
}

// ConnectedComponents returns every connected component, each one a mix of
// `engine_N` node names and identifier strings.
func (cg *ConsensusGraph) ConnectedComponents() [][]string { return cg.components }
