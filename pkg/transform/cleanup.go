package transform

import (
	"strings"

	"github.com/bpmntools/morph/pkg/model"
)

// Cleanup removes the artifacts of earlier transform runs, identified by the
// reserved id prefixes: Fragment_ groups with their member associations
// (cascading orphaned annotations), their category values, and AutoFlow_
// bypass flows. Running it twice in a row is equivalent to running it once.
//
// Returns the number of groups and flows removed.
func Cleanup(doc *model.Document) int {
	removed := 0

	for _, g := range doc.Groups() {
		if !strings.HasPrefix(g.ID, FragmentPrefix) {
			continue
		}
		for _, assoc := range doc.AssociationsWith(g.ID) {
			doc.RemoveAssociation(assoc.ID)
		}
		doc.RemoveGroup(g.ID)
		removed++
	}

	doc.RemoveCategoryValues(func(v model.CategoryValue) bool {
		return strings.HasPrefix(v.ID, FragmentPrefix)
	})

	for _, f := range doc.Flows() {
		if strings.HasPrefix(f.ID, AutoFlowPrefix) {
			doc.RemoveFlow(f.ID)
			removed++
		}
	}

	return removed
}
