package locator

import "github.com/mj1618/mobile-cli/internal/model"

// FilterSource reduces a verbose page source to its interactive elements
// only, each carrying just the best-guess locator. A full dump of a busy
// screen shrinks to a few percent of its raw size this way.
func FilterSource(raw, driverName string) ([]model.FilteredElement, model.SourceStats, error) {
	root, err := parseSource(raw, driverName)
	if err != nil {
		return nil, model.SourceStats{}, err
	}
	ios := isIOSDriver(driverName)

	kept, stats := acceptedNodes(root)
	elems := make([]model.FilteredElement, 0, len(kept))
	for _, n := range kept {
		best := candidates(n, ios)[0]
		elems = append(elems, model.FilteredElement{
			Type:      n.Class,
			Text:      n.Text,
			Strategy:  best.Strategy,
			Selector:  best.Selector,
			Bounds:    n.Bounds,
			Enabled:   n.Enabled,
			Clickable: n.Clickable,
		})
	}
	return elems, stats, nil
}
