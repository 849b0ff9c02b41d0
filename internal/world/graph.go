package world

import (
	"math"
	"sort"

	"github.com/sagaforge/saga-api/internal/entities"
)

// TravelRange is the maximum Euclidean distance at which two nodes are
// linked by a road at construction time.
const TravelRange = 200.0

// EdgeKindRoad labels proximity-derived travel edges.
const EdgeKindRoad = "ROAD"

// Edge is one directed half of an undirected graph connection.
type Edge struct {
	To     string
	Weight float64
	Kind   string
}

// Impact is the decayed effect of a propagated event on one neighbor.
type Impact struct {
	NodeID    string
	Kind      string
	Magnitude float64
}

// Graph is the travel connectivity over world nodes. Adjacency is
// built once from node coordinates.
type Graph struct {
	nodes map[string]*entities.WorldNode
	adj   map[string][]Edge
}

// NewGraph links every node pair closer than TravelRange with a ROAD
// edge weighted by Euclidean distance.
func NewGraph(nodes []*entities.WorldNode) *Graph {
	g := &Graph{
		nodes: make(map[string]*entities.WorldNode, len(nodes)),
		adj:   make(map[string][]Edge, len(nodes)),
	}
	for _, n := range nodes {
		g.nodes[n.ID] = n
		g.adj[n.ID] = nil
	}
	for _, a := range nodes {
		for _, b := range nodes {
			if a.ID == b.ID {
				continue
			}
			dist := math.Hypot(a.X-b.X, a.Y-b.Y)
			if dist < TravelRange {
				g.adj[a.ID] = append(g.adj[a.ID], Edge{To: b.ID, Weight: dist, Kind: EdgeKindRoad})
			}
		}
	}
	return g
}

// AddNode registers a node after construction, linking it to every
// existing node closer than TravelRange. Re-adding an id replaces the
// node but keeps its edges.
func (g *Graph) AddNode(n *entities.WorldNode) {
	if _, known := g.nodes[n.ID]; known {
		g.nodes[n.ID] = n
		return
	}
	g.nodes[n.ID] = n
	g.adj[n.ID] = nil
	for _, other := range g.nodes {
		if other.ID == n.ID {
			continue
		}
		dist := math.Hypot(n.X-other.X, n.Y-other.Y)
		if dist < TravelRange {
			g.adj[n.ID] = append(g.adj[n.ID], Edge{To: other.ID, Weight: dist, Kind: EdgeKindRoad})
			g.adj[other.ID] = append(g.adj[other.ID], Edge{To: n.ID, Weight: dist, Kind: EdgeKindRoad})
		}
	}
}

// Node returns the node with the given id, if known.
func (g *Graph) Node(id string) (*entities.WorldNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes ordered by id. Simulation passes iterate
// this so repeated runs on the same state converge identically.
func (g *Graph) Nodes() []*entities.WorldNode {
	out := make([]*entities.WorldNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetNeighbors returns the outgoing edges of a node, nil for unknown
// ids.
func (g *Graph) GetNeighbors(id string) []Edge {
	return g.adj[id]
}

// FindNearestNode returns the node closest to (x, y), nil on an empty
// graph.
func (g *Graph) FindNearestNode(x, y float64) *entities.WorldNode {
	var best *entities.WorldNode
	minDist := math.Inf(1)
	for _, n := range g.nodes {
		d := math.Hypot(n.X-x, n.Y-y)
		if d < minDist || (d == minDist && best != nil && n.ID < best.ID) {
			minDist = d
			best = n
		}
	}
	return best
}

// TriggerEvent propagates an event of the given kind from a node to
// its neighbors, decaying magnitude with edge weight. The caller
// applies the impacts.
func (g *Graph) TriggerEvent(id, kind string, magnitude float64) []Impact {
	edges := g.adj[id]
	impacts := make([]Impact, 0, len(edges))
	for _, e := range edges {
		impacts = append(impacts, Impact{
			NodeID:    e.To,
			Kind:      kind,
			Magnitude: magnitude * (100 / (100 + e.Weight)),
		})
	}
	return impacts
}
