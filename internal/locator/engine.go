// Package locator turns raw page-source dumps into ranked element locators.
// It parses the serialized UI tree of either platform, keeps the nodes an
// automation agent can act on, and computes locator candidates per node in
// decreasing order of stability. The transforms are pure: no shared state,
// safe to run concurrently over independent inputs.
package locator

import "github.com/mj1618/mobile-cli/internal/model"

// Options controls the shape of the locator view.
type Options struct {
	// FetchableOnly reduces each element's locator set to the single
	// best-guess strategy instead of every viable one.
	FetchableOnly bool
}

// Elements parses a raw page source and returns the locator view of every
// node that passes the inclusion rules, in document order, together with the
// filtering stats. A source with no qualifying nodes yields an empty slice,
// not an error.
func Elements(raw, driverName string, opts Options) ([]model.Element, model.SourceStats, error) {
	root, err := parseSource(raw, driverName)
	if err != nil {
		return nil, model.SourceStats{}, err
	}
	ios := isIOSDriver(driverName)

	kept, stats := acceptedNodes(root)
	elems := make([]model.Element, 0, len(kept))
	for _, n := range kept {
		cands := candidates(n, ios)
		if opts.FetchableOnly {
			cands = cands[:1]
		}
		locs := make(map[string]string, len(cands))
		for _, c := range cands {
			locs[c.Strategy] = c.Selector
		}
		elems = append(elems, model.Element{
			TagName:     n.Class,
			Locators:    locs,
			Text:        n.Text,
			ContentDesc: n.ContentDesc,
			ResourceID:  n.ResourceID,
			Clickable:   n.Clickable,
			Enabled:     n.Enabled,
			Displayed:   n.Displayed,
		})
	}
	return elems, stats, nil
}

// acceptedNodes walks the tree pre-order and returns the nodes that pass the
// inclusion rules plus the aggregate stats over the whole tree.
func acceptedNodes(root *node) ([]*node, model.SourceStats) {
	var kept []*node
	var stats model.SourceStats
	for _, n := range walk(root) {
		stats.TotalElements++
		if !include(n) {
			continue
		}
		kept = append(kept, n)
		if n.Clickable {
			stats.InteractableElements++
		}
	}
	stats.FilteredElements = len(kept)
	return kept, stats
}
