// Package transform implements the two rewrite modes over a process
// document: fragmentation, which partitions strongly-coupled activities into
// labeled groups, and masking, which removes privacy-sensitive activities
// while preserving reachability through synthesized bypass flows. A cleanup
// pass removes the artifacts of earlier runs.
//
// Both rewrites mutate the document they are given; the document must be
// exclusively owned by the caller for the duration of the call.
package transform

import (
	"github.com/bpmntools/morph/pkg/model"
)

// unionFind is an array-backed disjoint-set over activity indices with
// path-compressed find.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]] // halve the path as we walk it
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}

// Clusters partitions the document's activities into equivalence classes:
// two activities share a class iff they are connected by a path of flows
// each carrying a numeric coupling >= threshold. Flows without a coupling
// attribute and flows touching non-activity nodes are ignored.
//
// Classes are returned in first-encountered-root order over document
// activity order, each as a non-empty list of activity ids in document
// order. When includeSingletons is false, classes of size 1 are dropped
// after partitioning; the partition itself is unaffected.
func Clusters(doc *model.Document, threshold float64, includeSingletons bool) [][]string {
	activities := doc.Activities()
	index := make(map[string]int, len(activities))
	for i, a := range activities {
		index[a.ID] = i
	}

	uf := newUnionFind(len(activities))
	for _, f := range doc.Flows() {
		w, ok := f.Coupling()
		if !ok || w < threshold {
			continue
		}
		si, okS := index[f.Source]
		ti, okT := index[f.Target]
		if okS && okT {
			uf.union(si, ti)
		}
	}

	members := make(map[int][]string)
	var roots []int
	for i, a := range activities {
		r := uf.find(i)
		if _, seen := members[r]; !seen {
			roots = append(roots, r)
		}
		members[r] = append(members[r], a.ID)
	}

	var classes [][]string
	for _, r := range roots {
		if !includeSingletons && len(members[r]) == 1 {
			continue
		}
		classes = append(classes, members[r])
	}
	return classes
}
