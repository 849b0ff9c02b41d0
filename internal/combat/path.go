package combat

import (
	"container/heap"

	"github.com/sagaforge/saga-api/internal/world"
)

// HasLOS samples the integer grid line between two tiles; any wall
// strictly between the endpoints blocks sight. Endpoints never block.
func (e *Engine) HasLOS(x1, y1, x2, y2 int) bool {
	steps := chebyshev(x1, y1, x2, y2)
	if steps <= 1 {
		return true
	}
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		sx := x1 + int(roundHalf(float64(x2-x1)*t))
		sy := y1 + int(roundHalf(float64(y2-y1)*t))
		if sx == x1 && sy == y1 {
			continue
		}
		if sx == x2 && sy == y2 {
			continue
		}
		if e.grid.IsWall(sx, sy) {
			return false
		}
	}
	return true
}

func roundHalf(v float64) float64 {
	if v >= 0 {
		return float64(int(v + 0.5))
	}
	return -float64(int(-v + 0.5))
}

type pathNode struct {
	point  world.Point
	g      int
	f      int
	parent *pathNode
	index  int
}

type pathQueue []*pathNode

func (q pathQueue) Len() int { return len(q) }
func (q pathQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].g != q[j].g {
		return q[i].g < q[j].g
	}
	if q[i].point.Y != q[j].point.Y {
		return q[i].point.Y < q[j].point.Y
	}
	return q[i].point.X < q[j].point.X
}
func (q pathQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *pathQueue) Push(x interface{}) {
	n := x.(*pathNode)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *pathQueue) Pop() interface{} {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

var pathNeighbors = []world.Point{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// FindPath runs A* with 8-connected neighbors and a Chebyshev
// heuristic. Walls and tiles occupied by living combatants are
// impassable; the goal tile itself may be occupied (paths stop next to
// a target). Returns the tile sequence excluding the origin, nil when
// unreachable.
func (e *Engine) FindPath(fromX, fromY, toX, toY int) []world.Point {
	start := world.Point{X: fromX, Y: fromY}
	goal := world.Point{X: toX, Y: toY}
	if start == goal {
		return []world.Point{}
	}
	if !e.grid.InBounds(toX, toY) || e.grid.IsWall(toX, toY) {
		return nil
	}

	open := &pathQueue{}
	heap.Init(open)
	heap.Push(open, &pathNode{point: start, g: 0, f: chebyshev(fromX, fromY, toX, toY)})

	bestG := map[world.Point]int{start: 0}
	closed := map[world.Point]struct{}{}

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if current.point == goal {
			return rebuildPath(current)
		}
		if _, done := closed[current.point]; done {
			continue
		}
		closed[current.point] = struct{}{}

		for _, d := range pathNeighbors {
			next := world.Point{X: current.point.X + d.X, Y: current.point.Y + d.Y}
			if !e.grid.InBounds(next.X, next.Y) || e.grid.IsWall(next.X, next.Y) {
				continue
			}
			if next != goal {
				if _, occupied := e.OccupantAt(next.X, next.Y); occupied {
					continue
				}
			}
			g := current.g + 1
			if prev, seen := bestG[next]; seen && g >= prev {
				continue
			}
			bestG[next] = g
			heap.Push(open, &pathNode{
				point:  next,
				g:      g,
				f:      g + chebyshev(next.X, next.Y, toX, toY),
				parent: current,
			})
		}
	}
	return nil
}

func rebuildPath(n *pathNode) []world.Point {
	var reversed []world.Point
	for cur := n; cur.parent != nil; cur = cur.parent {
		reversed = append(reversed, cur.point)
	}
	path := make([]world.Point, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}
