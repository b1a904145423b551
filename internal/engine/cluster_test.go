package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveClusters_Transitive(t *testing.T) {
	// A-B and B-C qualify; A-C does not. Transitive closure still merges
	// all three.
	edges := []Match{
		{A: 0, B: 1, Score: 0.9},
		{A: 1, B: 2, Score: 0.85},
		{A: 0, B: 2, Score: 0.3},
	}
	clusters := resolveClusters(3, edges, 0.8)
	assert.Len(t, clusters, 1)
	assert.ElementsMatch(t, []int{0, 1, 2}, clusters[0])
}

func TestResolveClusters_Partition(t *testing.T) {
	edges := []Match{
		{A: 0, B: 3, Score: 0.95},
		{A: 1, B: 2, Score: 0.1},
	}
	clusters := resolveClusters(5, edges, 0.8)

	seen := make(map[int]int)
	total := 0
	for _, c := range clusters {
		total += len(c)
		for _, i := range c {
			seen[i]++
		}
	}
	// Every record in exactly one cluster; sizes sum to the input count.
	assert.Equal(t, 5, total)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 1, seen[i])
	}
	assert.Len(t, clusters, 4)
}

func TestResolveClusters_ThresholdMonotonic(t *testing.T) {
	edges := []Match{
		{A: 0, B: 1, Score: 0.7},
		{A: 1, B: 2, Score: 0.85},
		{A: 3, B: 4, Score: 0.95},
	}
	prev := -1
	for _, th := range []float64{0.6, 0.8, 0.9, 1.0} {
		n := len(resolveClusters(5, edges, th))
		// Raising the threshold never increases the number of merges.
		assert.GreaterOrEqual(t, n, prev)
		prev = n
	}
}

func TestResolveClusters_NoEdges(t *testing.T) {
	clusters := resolveClusters(3, nil, 0.8)
	assert.Equal(t, [][]int{{0}, {1}, {2}}, clusters)
}

func TestUnionFind(t *testing.T) {
	uf := newUnionFind(4)
	uf.union(0, 1)
	uf.union(2, 3)
	assert.Equal(t, uf.find(0), uf.find(1))
	assert.Equal(t, uf.find(2), uf.find(3))
	assert.NotEqual(t, uf.find(0), uf.find(2))

	uf.union(1, 2)
	assert.Equal(t, uf.find(0), uf.find(3))
}
