// Package cluster implements hierarchical density-based clustering over
// geographic points with a haversine metric. The pipeline runs it twice:
// once over restaurant locations and once over weighted taxi drop-offs.
package cluster

import (
	"log/slog"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// Noise is the label assigned to points that belong to no dense cluster.
const Noise = -1

// SelectionEpsilon is the minimum separation between clusters, expressed in
// radians of great-circle arc. Clusters born closer than this to a larger
// neighboring cluster are merged into it. The value controls minimum polygon
// granularity downstream and must not change.
const SelectionEpsilon = 0.001

// bridgeFactor decides when a spanning-tree edge counts as a bridge over
// empty space rather than part of a density plateau: the edge must exceed
// twice the median core distance of the surviving side of the cut. The
// median keeps outliers that still sit on the surviving side, waiting for
// their own cut, from inflating the baseline.
const bridgeFactor = 2.0

// minDistance clamps zero-length merges (duplicated points) so that density
// values stay finite.
const minDistance = 1e-12

// Clusterer groups 2-D geographic points into dense clusters. The result is
// deterministic for identical input ordering and parameters.
type Clusterer struct {
	minClusterSize int
	minSamples     int
	log            *slog.Logger
}

// NewClusterer returns a clusterer with the given parameters.
// minClusterSize is the minimum membership for a cluster, minSamples the
// neighborhood size used for core distances.
func NewClusterer(minClusterSize, minSamples int, log *slog.Logger) *Clusterer {
	if minClusterSize < 2 {
		minClusterSize = 2
	}
	if minSamples < 1 {
		minSamples = 1
	}
	return &Clusterer{minClusterSize: minClusterSize, minSamples: minSamples, log: log}
}

type edge struct {
	a, b int
	w    float64
}

// Fit assigns every input point a cluster label, Noise for outliers.
// Label values are arbitrary; only membership sets are meaningful.
// Fewer points than minClusterSize yields all-noise, not an error.
func (c *Clusterer) Fit(points []orb.Point) []int {
	n := len(points)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	if n < c.minClusterSize {
		return labels
	}

	// The metric is defined on angles, so degrees convert to radians first.
	lon := make([]float64, n)
	lat := make([]float64, n)
	for i, p := range points {
		lon[i] = p[0] * math.Pi / 180
		lat[i] = p[1] * math.Pi / 180
	}

	core := c.coreDistances(lon, lat)
	edges := c.spanningTree(lon, lat, core)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].w != edges[j].w {
			return edges[i].w < edges[j].w
		}
		if edges[i].a != edges[j].a {
			return edges[i].a < edges[j].a
		}
		return edges[i].b < edges[j].b
	})

	nodes := buildHierarchy(edges, n)
	tree := condense(nodes, n, c.minClusterSize)
	selected, root := tree.selectClusters()
	if root {
		c.log.Debug("no selectable sub-cluster, labeling root by runt peeling")
		return c.peelRoot(edges, core, n)
	}

	for i, id := range selected {
		for _, cl := range tree.subtree(id) {
			for _, p := range tree.clusters[cl].points {
				labels[p] = i
			}
		}
	}
	return labels
}

// coreDistances returns, for each point, the distance to its k-th nearest
// neighbor (the point itself included), k = minSamples.
func (c *Clusterer) coreDistances(lon, lat []float64) []float64 {
	n := len(lon)
	k := c.minSamples
	if k > n {
		k = n
	}
	core := make([]float64, n)
	dists := make([]float64, n)
	for i := range n {
		for j := range n {
			dists[j] = Haversine(lon[i], lat[i], lon[j], lat[j])
		}
		sort.Float64s(dists)
		core[i] = dists[k-1]
	}
	return core
}

// spanningTree builds the minimum spanning tree of the complete
// mutual-reachability graph with Prim's algorithm. Ties break on the lowest
// point index so repeated runs produce the same tree.
func (c *Clusterer) spanningTree(lon, lat, core []float64) []edge {
	n := len(lon)
	inTree := make([]bool, n)
	dist := make([]float64, n)
	from := make([]int, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		from[i] = -1
	}
	dist[0] = 0

	edges := make([]edge, 0, n-1)
	for range n {
		u := -1
		for v := range n {
			if !inTree[v] && (u == -1 || dist[v] < dist[u]) {
				u = v
			}
		}
		inTree[u] = true
		if from[u] >= 0 {
			a, b := from[u], u
			if b < a {
				a, b = b, a
			}
			edges = append(edges, edge{a: a, b: b, w: dist[u]})
		}
		for v := range n {
			if inTree[v] {
				continue
			}
			w := Haversine(lon[u], lat[u], lon[v], lat[v])
			if core[u] > w {
				w = core[u]
			}
			if core[v] > w {
				w = core[v]
			}
			if w < dist[v] {
				dist[v] = w
				from[v] = u
			}
		}
	}
	return edges
}

// linkNode is one merge of the single-linkage dendrogram. Leaves are point
// indices 0..n-1; internal node i lives at index n+i.
type linkNode struct {
	left, right int
	dist        float64
	size        int
}

// buildHierarchy turns the sorted MST edges into a single-linkage tree via
// union-find. The last node created is the root.
func buildHierarchy(edges []edge, n int) []linkNode {
	nodes := make([]linkNode, 0, n-1)
	parent := make([]int, n)
	comp := make([]int, n) // current dendrogram node per component root
	for i := range n {
		parent[i] = i
		comp[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	sizeOf := func(id int) int {
		if id < n {
			return 1
		}
		return nodes[id-n].size
	}
	for _, e := range edges {
		ra, rb := find(e.a), find(e.b)
		l, r := comp[ra], comp[rb]
		nodes = append(nodes, linkNode{
			left:  l,
			right: r,
			dist:  e.w,
			size:  sizeOf(l) + sizeOf(r),
		})
		parent[ra] = rb
		comp[rb] = n + len(nodes) - 1
	}
	return nodes
}

// condensedCluster is a node of the condensed tree: a cluster that persists
// over a density range, with the points that fell out of it and the lambda
// (inverse distance) at which each left.
type condensedCluster struct {
	parent      int
	birthLambda float64
	children    []int
	points      []int
	pointLambda []float64
	size        int
}

type condensedTree struct {
	clusters []condensedCluster
	nodes    []linkNode
	n        int
}

func lambdaOf(dist float64) float64 {
	if dist < minDistance {
		dist = minDistance
	}
	return 1 / dist
}

// condense walks the dendrogram top-down. A split where both sides reach
// minClusterSize creates two child clusters; otherwise the small side's
// points fall out of the current cluster at the split's lambda.
func condense(nodes []linkNode, n, minClusterSize int) *condensedTree {
	t := &condensedTree{nodes: nodes, n: n}
	t.clusters = append(t.clusters, condensedCluster{parent: -1, birthLambda: 0, size: n})

	sizeOf := func(id int) int {
		if id < n {
			return 1
		}
		return nodes[id-n].size
	}

	type frame struct{ node, cluster int }
	stack := []frame{{2*n - 2, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := nodes[f.node-n]
		lambda := lambdaOf(node.dist)
		sl, sr := sizeOf(node.left), sizeOf(node.right)

		switch {
		case sl >= minClusterSize && sr >= minClusterSize:
			for _, child := range [2]int{node.left, node.right} {
				id := len(t.clusters)
				t.clusters = append(t.clusters, condensedCluster{
					parent:      f.cluster,
					birthLambda: lambda,
					size:        sizeOf(child),
				})
				t.clusters[f.cluster].children = append(t.clusters[f.cluster].children, id)
				stack = append(stack, frame{child, id})
			}
		case sl >= minClusterSize:
			t.drop(f.cluster, node.right, lambda)
			stack = append(stack, frame{node.left, f.cluster})
		case sr >= minClusterSize:
			t.drop(f.cluster, node.left, lambda)
			stack = append(stack, frame{node.right, f.cluster})
		default:
			t.drop(f.cluster, node.left, lambda)
			t.drop(f.cluster, node.right, lambda)
		}
	}
	return t
}

// drop records every leaf under node as departing cluster id at lambda.
func (t *condensedTree) drop(id, node int, lambda float64) {
	stack := []int{node}
	for len(stack) > 0 {
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if nd < t.n {
			cl := &t.clusters[id]
			cl.points = append(cl.points, nd)
			cl.pointLambda = append(cl.pointLambda, lambda)
			continue
		}
		stack = append(stack, t.nodes[nd-t.n].left, t.nodes[nd-t.n].right)
	}
}

// subtree returns id plus all condensed clusters below it.
func (t *condensedTree) subtree(id int) []int {
	out := []int{}
	stack := []int{id}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, c)
		stack = append(stack, t.clusters[c].children...)
	}
	return out
}

// stability is the excess of mass of a cluster: how long its members
// persisted beyond the cluster's birth density.
func (t *condensedTree) stability(id int) float64 {
	cl := t.clusters[id]
	s := 0.0
	for _, l := range cl.pointLambda {
		s += l - cl.birthLambda
	}
	for _, ch := range cl.children {
		s += (t.clusters[ch].birthLambda - cl.birthLambda) * float64(t.clusters[ch].size)
	}
	return s
}

// selectClusters runs excess-of-mass selection bottom-up, then merges
// selected clusters upward when they were born within SelectionEpsilon of
// their parent split. It returns the selected cluster ids in ascending
// order, or root=true when labeling must fall back to the root cluster.
func (t *condensedTree) selectClusters() (selected []int, root bool) {
	m := len(t.clusters)
	if m == 1 {
		return nil, true
	}

	stab := make([]float64, m)
	for id := range m {
		stab[id] = t.stability(id)
	}

	chosen := make([]bool, m)
	propagated := make([]float64, m)
	for id := m - 1; id >= 1; id-- {
		childSum := 0.0
		for _, ch := range t.clusters[id].children {
			childSum += propagated[ch]
		}
		if stab[id] >= childSum {
			chosen[id] = true
			for _, d := range t.subtree(id)[1:] {
				chosen[d] = false
			}
			propagated[id] = stab[id]
		} else {
			propagated[id] = childSum
		}
	}

	// Epsilon merge: climb from each selection until the birth distance
	// clears the minimum separation.
	birthDist := func(id int) float64 {
		if t.clusters[id].birthLambda <= 0 {
			return math.Inf(1)
		}
		return 1 / t.clusters[id].birthLambda
	}
	merged := make(map[int]bool)
	for id := 1; id < m; id++ {
		if !chosen[id] {
			continue
		}
		a := id
		for a != 0 && birthDist(a) < SelectionEpsilon {
			a = t.clusters[a].parent
		}
		if a == 0 {
			return nil, true
		}
		merged[a] = true
	}
	if len(merged) == 0 {
		return nil, true
	}

	// Keep only selections with no selected ancestor.
	for id := range merged {
		keep := true
		for a := t.clusters[id].parent; a != -1; a = t.clusters[a].parent {
			if merged[a] {
				keep = false
				break
			}
		}
		if keep {
			selected = append(selected, id)
		}
	}
	sort.Ints(selected)
	return selected, false
}

// peelRoot labels the dataset when the whole of it condensed into a single
// cluster. Excess-of-mass selection never picks the hierarchy root, which
// would turn a lone dense blob with a few stragglers into all-noise, so the
// stragglers are peeled off the spanning tree instead: repeatedly cut the
// heaviest edge while it splits off fewer than minClusterSize points and is
// a bridge relative to the surviving side's median core distance. At larger
// neighborhood sizes a straggler's own core distance reaches back across
// the empty gap, so the baseline must be a robust statistic, not the
// maximum. Components that keep minClusterSize members become clusters, the
// rest is noise.
func (c *Clusterer) peelRoot(edges []edge, core []float64, n int) []int {
	active := make([]bool, len(edges))
	for i := range active {
		active[i] = true
	}

	adj := func() [][]int {
		g := make([][]int, n)
		for k, e := range edges {
			if !active[k] {
				continue
			}
			g[e.a] = append(g[e.a], k)
			g[e.b] = append(g[e.b], k)
		}
		return g
	}
	component := func(g [][]int, start, skip int) []int {
		seen := make(map[int]bool)
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, k := range g[u] {
				if k == skip {
					continue
				}
				v := edges[k].a + edges[k].b - u
				if !seen[v] {
					seen[v] = true
					stack = append(stack, v)
				}
			}
		}
		out := make([]int, 0, len(seen))
		for p := range seen {
			out = append(out, p)
		}
		return out
	}
	medianCore := func(side []int) float64 {
		vals := make([]float64, len(side))
		for i, p := range side {
			vals[i] = core[p]
		}
		sort.Float64s(vals)
		return vals[len(vals)/2]
	}

	for k := len(edges) - 1; k >= 0; k-- {
		g := adj()
		whole := component(g, edges[k].a, -1)
		if len(whole) < c.minClusterSize {
			// Already a noise island, nothing to peel.
			continue
		}
		sideA := component(g, edges[k].a, k)
		sideB := component(g, edges[k].b, k)
		small, big := sideA, sideB
		if len(sideB) < len(sideA) {
			small, big = sideB, sideA
		}
		if len(small) < c.minClusterSize && edges[k].w > bridgeFactor*medianCore(big) {
			active[k] = false
			continue
		}
		break
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	g := adj()
	next := 0
	seen := make([]bool, n)
	for p := range n {
		if seen[p] {
			continue
		}
		comp := component(g, p, -1)
		for _, q := range comp {
			seen[q] = true
		}
		if len(comp) < c.minClusterSize {
			continue
		}
		for _, q := range comp {
			labels[q] = next
		}
		next++
	}
	return labels
}
