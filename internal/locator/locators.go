package locator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mj1618/mobile-cli/internal/model"
)

// candidates returns every viable locator strategy for a node, most stable
// first: accessibility and resource identifiers outlast UI revisions, visible
// text survives layout changes, and the bare class name is a last resort.
func candidates(n *node, ios bool) []model.Candidate {
	var out []model.Candidate
	if n.ContentDesc != "" {
		out = append(out, model.Candidate{Strategy: model.StrategyAccessibilityID, Selector: n.ContentDesc})
	}
	if n.ResourceID != "" {
		out = append(out, model.Candidate{Strategy: model.StrategyResourceID, Selector: n.ResourceID})
	}
	if n.Text != "" {
		out = append(out, textCandidate(n.Text, ios))
	}
	if n.Class != "" {
		out = append(out, model.Candidate{Strategy: model.StrategyClassName, Selector: n.Class})
	}
	return out
}

// textCandidate builds the platform's native text-query selector with the
// literal text embedded, so the selector can go to the backend verbatim.
func textCandidate(text string, ios bool) model.Candidate {
	if ios {
		return model.Candidate{
			Strategy: model.StrategyIOSPredicate,
			Selector: fmt.Sprintf(`label == "%s"`, escapeQuoted(text)),
		}
	}
	return model.Candidate{
		Strategy: model.StrategyUIAutomator,
		Selector: fmt.Sprintf(`new UiSelector().text("%s")`, escapeQuoted(text)),
	}
}

// escapeQuoted escapes backslashes and double quotes so the text can sit
// inside a double-quoted selector literal.
func escapeQuoted(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// strategyRank orders strategies for fallback matching, best first.
var strategyRank = map[string]int{
	model.StrategyAccessibilityID: 0,
	model.StrategyResourceID:      1,
	model.StrategyUIAutomator:     2,
	model.StrategyIOSPredicate:    2,
	model.StrategyClassName:       3,
}

// Ranked orders a locator map by strategy priority, best first, for callers
// that retry resolution with the next-best strategy on failure. Unknown
// strategies sort last so nothing a caller stored is silently dropped.
func Ranked(locators map[string]string) []model.Candidate {
	out := make([]model.Candidate, 0, len(locators))
	for strategy, selector := range locators {
		out = append(out, model.Candidate{Strategy: strategy, Selector: selector})
	}
	rank := func(c model.Candidate) int {
		if r, ok := strategyRank[c.Strategy]; ok {
			return r
		}
		return len(strategyRank)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i].Strategy < out[j].Strategy
	})
	return out
}
