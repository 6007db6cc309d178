package transform

import (
	"fmt"
	"sort"

	"github.com/bpmntools/morph/pkg/model"
)

// Direction selects which side of the privacy threshold marks an activity
// for removal.
type Direction string

const (
	// DirectionAbove masks activities with privacy >= threshold.
	DirectionAbove Direction = "above"
	// DirectionBelow masks activities with privacy < threshold.
	DirectionBelow Direction = "below"
)

// MaskOptions configures the masking rewrite.
type MaskOptions struct {
	Threshold float64
	Direction Direction
}

// ShouldMask reports whether an activity with the given privacy value falls
// on the masked side of the threshold.
func (o MaskOptions) ShouldMask(privacy float64) bool {
	if o.Direction == DirectionAbove {
		return privacy >= o.Threshold
	}
	return privacy < o.Threshold
}

// Mask removes privacy-sensitive activities from the document while
// preserving end-to-end reachability. The run proceeds in fixed phases:
//
//  1. Discover: collect activities whose numeric privacy attribute satisfies
//     the threshold/direction predicate. Activities without the attribute
//     are never masked. An empty set makes the whole run a no-op.
//  2. Synthesize: for every masked node, find its nearest unmasked
//     predecessors and successors reachable through chains of other masked
//     nodes, and create one AutoFlow_<n> bypass flow per distinct
//     (pred, succ) pair that is not a self-loop and does not duplicate a
//     pre-existing or already-synthesized flow. Synthesis completes for the
//     entire masked set before anything is removed, because removal deletes
//     the masked-interior flows the discovery walks through.
//  3. Excise: remove each masked node's touching flows (with their
//     associations and diagram edges), its own associations, its shape, and
//     finally the node. Annotations orphaned by association removal are
//     collected by the document.
//
// Returns the number of activities removed.
func Mask(doc *model.Document, opts MaskOptions) int {
	masked := make(map[string]bool)
	var maskedList []string
	for _, a := range doc.Activities() {
		p, ok := a.Privacy()
		if ok && opts.ShouldMask(p) {
			masked[a.ID] = true
			maskedList = append(maskedList, a.ID)
		}
	}
	if len(maskedList) == 0 {
		return 0
	}

	synthesizeBypasses(doc, maskedList, masked)

	for _, id := range maskedList {
		for _, f := range doc.FlowsTouching(id) {
			doc.RemoveFlow(f.ID)
		}
		for _, assoc := range doc.AssociationsWith(id) {
			doc.RemoveAssociation(assoc.ID)
		}
		doc.RemoveActivity(id)
	}
	return len(maskedList)
}

func synthesizeBypasses(doc *model.Document, maskedList []string, masked map[string]bool) {
	forward := make(map[string][]string)
	reverse := make(map[string][]string)
	seen := make(map[[2]string]bool)
	for _, f := range doc.Flows() {
		forward[f.Source] = append(forward[f.Source], f.Target)
		reverse[f.Target] = append(reverse[f.Target], f.Source)
		seen[[2]string{f.Source, f.Target}] = true
	}

	counter := 0
	for _, m := range maskedList {
		preds := boundary(m, reverse, masked)
		succs := boundary(m, forward, masked)
		for _, src := range preds {
			for _, tgt := range succs {
				if src == tgt {
					continue
				}
				key := [2]string{src, tgt}
				if seen[key] {
					continue
				}
				seen[key] = true
				counter++
				addBypassFlow(doc, counter, src, tgt)
			}
		}
	}
}

func addBypassFlow(doc *model.Document, n int, src, tgt string) {
	id := fmt.Sprintf("%s%d", AutoFlowPrefix, n)
	doc.AddFlow(&model.Flow{ID: id, Source: src, Target: tgt})

	srcShape, okS := doc.ShapeFor(src)
	tgtShape, okT := doc.ShapeFor(tgt)
	if okS && okT {
		a, b := model.AnchorPoints(srcShape.Bounds, tgtShape.Bounds)
		doc.AddDiagramEdge(&model.DiagramEdge{
			ID:        "Edge_" + id,
			Element:   id,
			Waypoints: []model.Point{a, b},
		})
	}
}

// boundary walks the adjacency from start, continuing only through masked
// nodes, and collects every unmasked node encountered on the frontier
// without passing through it. The result is sorted for deterministic bypass
// numbering; it is empty when no unmasked node is reachable on this side.
func boundary(start string, adj map[string][]string, masked map[string]bool) []string {
	visited := map[string]bool{start: true}
	queue := []string{start}
	var frontier []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			if masked[next] {
				queue = append(queue, next)
				continue
			}
			frontier = append(frontier, next)
		}
	}

	sort.Strings(frontier)
	return frontier
}
