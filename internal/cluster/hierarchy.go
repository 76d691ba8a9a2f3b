// Package cluster implements hierarchical agglomerative clustering over
// Euclidean feature space. The tree is cut to a fixed number of clusters;
// cluster numbering follows first-member order in the input so repeated
// runs over the same input produce identical assignments.
package cluster

import (
	"fmt"
	"math"
	"sort"
)

// Linkage selects the merge criterion.
type Linkage int

const (
	// Ward merges the pair that minimizes the within-cluster variance
	// increase. Operates on squared Euclidean distances.
	Ward Linkage = iota
	// Average merges by mean pairwise distance between members.
	Average
)

func (l Linkage) String() string {
	switch l {
	case Ward:
		return "ward"
	case Average:
		return "average"
	default:
		return fmt.Sprintf("linkage(%d)", int(l))
	}
}

// ParseLinkage maps a config string to a Linkage.
func ParseLinkage(s string) (Linkage, error) {
	switch s {
	case "", "ward":
		return Ward, nil
	case "average":
		return Average, nil
	default:
		return Ward, fmt.Errorf("unknown linkage %q (want ward or average)", s)
	}
}

// Assign clusters the feature rows into min(k, len(features)) groups and
// returns one cluster ID per row. IDs are dense, 0-based, and ordered by
// each cluster's first member in input order. All rows must share the same
// dimensionality.
func Assign(features [][]float64, k int, linkage Linkage) ([]int, error) {
	n := len(features)
	if n == 0 {
		return nil, nil
	}
	if k <= 0 {
		return nil, fmt.Errorf("cluster: k must be positive, got %d", k)
	}
	dim := len(features[0])
	for i, row := range features {
		if len(row) != dim {
			return nil, fmt.Errorf("cluster: row %d has %d features, want %d", i, len(row), dim)
		}
	}
	if k > n {
		k = n
	}

	// Active cluster state. members holds input indices; size mirrors
	// len(members) for the Lance-Williams updates.
	members := make([][]int, n)
	size := make([]float64, n)
	alive := make([]bool, n)
	for i := 0; i < n; i++ {
		members[i] = []int{i}
		size[i] = 1
		alive[i] = true
	}

	// Pairwise distance matrix. Ward works on squared Euclidean,
	// average linkage on plain Euclidean.
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := sqDist(features[i], features[j])
			if linkage == Average {
				d = math.Sqrt(d)
			}
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	for remaining := n; remaining > k; remaining-- {
		// Closest pair; ties resolved toward the lowest index pair.
		bi, bj := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !alive[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !alive[j] {
					continue
				}
				if dist[i][j] < best {
					best = dist[i][j]
					bi, bj = i, j
				}
			}
		}

		// Merge bj into bi, then update distances from the merged
		// cluster to every other live cluster.
		ni, nj := size[bi], size[bj]
		for x := 0; x < n; x++ {
			if !alive[x] || x == bi || x == bj {
				continue
			}
			var d float64
			switch linkage {
			case Ward:
				nx := size[x]
				d = ((ni+nx)*dist[bi][x] + (nj+nx)*dist[bj][x] - nx*dist[bi][bj]) / (ni + nj + nx)
			default:
				d = (ni*dist[bi][x] + nj*dist[bj][x]) / (ni + nj)
			}
			dist[bi][x] = d
			dist[x][bi] = d
		}
		members[bi] = append(members[bi], members[bj]...)
		size[bi] = ni + nj
		alive[bj] = false
		members[bj] = nil
	}

	// Number clusters by first member in input order.
	type group struct {
		first   int
		indices []int
	}
	groups := make([]group, 0, k)
	for i := 0; i < n; i++ {
		if !alive[i] {
			continue
		}
		first := members[i][0]
		for _, idx := range members[i] {
			if idx < first {
				first = idx
			}
		}
		groups = append(groups, group{first: first, indices: members[i]})
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].first < groups[b].first })

	labels := make([]int, n)
	for id, g := range groups {
		for _, idx := range g.indices {
			labels[idx] = id
		}
	}
	return labels, nil
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
