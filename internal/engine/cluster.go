package engine

// unionFind is the connected-components structure for cluster resolution.
// Records are represented by index into the input slice; no pointer graph
// is built between records. Not safe for concurrent use: the union pass is
// single-threaded even when pair scoring is parallelized.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// resolveClusters unions every edge at or above the merge threshold and
// returns the resulting clusters as index lists. Transitive closure is
// deliberate: if A matches B and B matches C, all three merge even when
// A to C alone scores below threshold. Clusters partition the input (every
// index appears in exactly one cluster, singletons included), ordered by
// first member, members in insertion order.
func resolveClusters(n int, edges []Match, threshold float64) [][]int {
	uf := newUnionFind(n)
	for _, e := range edges {
		if e.Score >= threshold {
			uf.union(e.A, e.B)
		}
	}

	byRoot := make(map[int][]int)
	var order []int
	for i := 0; i < n; i++ {
		root := uf.find(i)
		if _, ok := byRoot[root]; !ok {
			order = append(order, root)
		}
		byRoot[root] = append(byRoot[root], i)
	}

	clusters := make([][]int, 0, len(order))
	for _, root := range order {
		clusters = append(clusters, byRoot[root])
	}
	return clusters
}
