package services

import (
	"atm-route-service/internal/domain"
	"container/heap"
	"context"
	"math"
)

// DefaultMaxNodes caps the nodes one search may create when
// SearchOptions.MaxNodes is zero.
const DefaultMaxNodes = 250000

// SearchOptions weights the two cost components of a visit.
//
// Alpha scales travel seconds; Beta scales remaining cash. Both must lie in
// [0, 1]. MaxExpansions caps the number of expanded nodes (0 means no cap).
// MaxNodes caps the nodes created, which bounds memory: 0 means
// DefaultMaxNodes and a negative value removes the cap. When any budget runs
// out or ctx is done the search stops early and completes its best partial
// route greedily.
type SearchOptions struct {
	Alpha         float64
	Beta          float64
	MaxExpansions int
	MaxNodes      int
}

type SearchResult struct {
	Order      []int
	Cost       float64
	Expansions int
	// Nodes created, the root included.
	Generated  int
	Truncated  bool
}

// bitset marks visited targets, one bit per index.
type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) has(i int) bool { return b[i/64]&(1<<(uint(i)%64)) != 0 }

func (b bitset) with(i int) bitset {
	out := make(bitset, len(b))
	copy(out, b)
	out[i/64] |= 1 << (uint(i) % 64)
	return out
}

// searchNode is one partial route. Nodes share their prefix through parent;
// f = g + h is derived, never stored.
type searchNode struct {
	parent  *searchNode
	last    int
	depth   int
	visited bitset
	g       float64
	h       float64
	seq     int
}

func (n *searchNode) f() float64 { return n.g + n.h }

func (n *searchNode) path() []int {
	out := make([]int, n.depth)
	for cur := n; cur != nil && cur.depth > 0; cur = cur.parent {
		out[cur.depth-1] = cur.last
	}
	return out
}

// frontier is a min-heap ordered by f, then g, then the index of the last
// visited target, then insertion order.
type frontier []*searchNode

func (q frontier) Len() int { return len(q) }

func (q frontier) Less(i, j int) bool {
	a, b := q[i], q[j]
	if fa, fb := a.f(), b.f(); fa != fb {
		return fa < fb
	}
	if a.g != b.g {
		return a.g < b.g
	}
	if a.last != b.last {
		return a.last < b.last
	}
	return a.seq < b.seq
}

func (q frontier) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *frontier) Push(x any) { *q = append(*q, x.(*searchNode)) }

func (q *frontier) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return node
}

type routeSearch struct {
	cash  []float64
	times domain.TimeMatrix
	alpha float64
	beta  float64
	n     int
}

// stepCost is the incremental cost of visiting `to` as stop number depth.
// The cash term is scaled by the number of stops that remain afterwards, which
// pulls low-cash ATMs toward the front of the route.
func (s *routeSearch) stepCost(from, to, depth int) float64 {
	return s.alpha*s.times.Leg(from, to) + s.beta*s.cash[to]*float64(s.n-depth)
}

// heuristic combines the cheapest outgoing leg and the lowest remaining cash
// among unvisited targets. The two minima may come from different targets, so
// this is not a strict lower bound.
func (s *routeSearch) heuristic(current int, visited bitset) float64 {
	minTime := math.Inf(1)
	minCash := math.Inf(1)
	for i := 0; i < s.n; i++ {
		if visited.has(i) {
			continue
		}
		if t := s.times.Leg(current, i); t < minTime {
			minTime = t
		}
		if c := s.cash[i]; c < minCash {
			minCash = c
		}
	}
	if math.IsInf(minTime, 1) {
		minTime = 0
	}
	if math.IsInf(minCash, 1) {
		minCash = 0
	}
	return s.alpha*minTime + s.beta*minCash
}

func validWeight(w float64) bool {
	return !math.IsNaN(w) && w >= 0 && w <= 1
}

func validCash(cash []float64) bool {
	for _, c := range cash {
		if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
			return false
		}
	}
	return true
}

// BestFirstOrder returns a visiting order over all targets.
//
// cash[i] is the remaining cash of target i. An empty result means the inputs
// are not usable: nothing to visit, missing or mis-sized times, non-finite or
// negative times or cash, or weights outside [0, 1].
//
// The frontier can grow factorially with the number of targets; the engine is
// meant for tens of stops. MaxNodes bounds memory, MaxExpansions and a ctx
// deadline bound time.
func BestFirstOrder(
	ctx context.Context,
	cash []float64,
	times domain.TimeMatrix,
	opts SearchOptions,
) SearchResult {
	n := len(cash)
	if n == 0 || !times.Ready(n) || !validCash(cash) || !validWeight(opts.Alpha) || !validWeight(opts.Beta) {
		return SearchResult{Order: []int{}}
	}

	maxNodes := opts.MaxNodes
	if maxNodes == 0 {
		maxNodes = DefaultMaxNodes
	}

	s := &routeSearch{cash: cash, times: times, alpha: opts.Alpha, beta: opts.Beta, n: n}

	rootVisited := newBitset(n)
	root := &searchNode{
		last:    -1,
		visited: rootVisited,
		h:       s.heuristic(-1, rootVisited),
	}
	open := &frontier{root}
	generated := 1

	var best *searchNode
	expansions := 0

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)

		// Goal test on pop, not on generation.
		if current.depth == n {
			return SearchResult{Order: current.path(), Cost: current.g, Expansions: expansions, Generated: generated}
		}

		if best == nil || current.depth > best.depth ||
			(current.depth == best.depth && current.f() < best.f()) {
			best = current
		}

		children := n - current.depth
		if (opts.MaxExpansions > 0 && expansions >= opts.MaxExpansions) ||
			(maxNodes > 0 && generated+children > maxNodes) ||
			(expansions%256 == 0 && ctx.Err() != nil) {
			res := s.complete(best, expansions)
			res.Generated = generated
			return res
		}
		expansions++

		depth := current.depth + 1
		for i := 0; i < n; i++ {
			if current.visited.has(i) {
				continue
			}

			visited := current.visited.with(i)
			heap.Push(open, &searchNode{
				parent:  current,
				last:    i,
				depth:   depth,
				visited: visited,
				g:       current.g + s.stepCost(current.last, i, depth),
				h:       s.heuristic(i, visited),
				seq:     generated,
			})
			generated++
		}
	}

	return SearchResult{Order: []int{}, Expansions: expansions, Generated: generated}
}

// complete extends a partial route to a full one by repeatedly taking the
// cheapest next step. Ties go to the lower index.
func (s *routeSearch) complete(node *searchNode, expansions int) SearchResult {
	path := make([]int, 0, s.n)
	path = append(path, node.path()...)
	visited := make([]bool, s.n)
	for _, idx := range path {
		visited[idx] = true
	}
	cost := node.g

	for len(path) < s.n {
		from := -1
		if len(path) > 0 {
			from = path[len(path)-1]
		}
		depth := len(path) + 1

		next := -1
		nextCost := math.Inf(1)
		for i := 0; i < s.n; i++ {
			if visited[i] {
				continue
			}
			if c := s.stepCost(from, i, depth); next == -1 || c < nextCost {
				next, nextCost = i, c
			}
		}

		visited[next] = true
		path = append(path, next)
		cost += nextCost
	}

	return SearchResult{Order: path, Cost: cost, Expansions: expansions, Truncated: true}
}

// BestFirstRoute orders ATMs with BestFirstOrder and returns the records
// themselves. Missing or mis-sized times yield an empty slice.
func BestFirstRoute(
	ctx context.Context,
	atms []domain.ATM,
	times domain.TimeMatrix,
	opts SearchOptions,
) ([]domain.ATM, SearchResult) {
	res := BestFirstOrder(ctx, remainingCash(atms), times, opts)

	out := make([]domain.ATM, 0, len(res.Order))
	for _, idx := range res.Order {
		out = append(out, atms[idx])
	}
	return out, res
}

// RouteCost scores a complete order with the same weights the search uses.
func RouteCost(cash []float64, times domain.TimeMatrix, order []int, opts SearchOptions) float64 {
	s := &routeSearch{cash: cash, times: times, alpha: opts.Alpha, beta: opts.Beta, n: len(cash)}
	cost := 0.0
	from := -1
	for k, idx := range order {
		cost += s.stepCost(from, idx, k+1)
		from = idx
	}
	return cost
}

func remainingCash(atms []domain.ATM) []float64 {
	cash := make([]float64, len(atms))
	for i, a := range atms {
		cash[i] = a.RemainingCash
	}
	return cash
}
