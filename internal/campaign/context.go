package campaign

import (
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/world"
)

// Graph node metric names consulted for flavoring.
const (
	metricWealth = "wealth"
	metricInfra  = "infra"
)

const wildlands = "the wildlands"

// GraphContext answers context queries from the world travel graph.
type GraphContext struct {
	graph *world.Graph
}

var _ ContextSource = (*GraphContext)(nil)

// NewGraphContext creates a GraphContext over the given graph.
func NewGraphContext(graph *world.Graph) (*GraphContext, error) {
	if graph == nil {
		return nil, errors.InvalidArgument("graph cannot be nil")
	}
	return &GraphContext{graph: graph}, nil
}

// ContextAt reports the nearest landmark and its local economy. False
// on an empty graph.
func (gc *GraphContext) ContextAt(x, y float64) (*LocalContext, bool) {
	node := gc.graph.FindNearestNode(x, y)
	if node == nil {
		return nil, false
	}

	territory := wildlands
	if node.FactionID != "" {
		territory = node.FactionID
	}

	return &LocalContext{
		LandmarkName: node.Name,
		LandmarkType: "settlement",
		Territory:    territory,
		Wealth:       node.Metric(metricWealth, 0),
		Infra:        node.Metric(metricInfra, 0),
	}, true
}
