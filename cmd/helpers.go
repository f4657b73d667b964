package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mj1618/mobile-cli/internal/locator"
	"github.com/mj1618/mobile-cli/internal/model"
	"github.com/mj1618/mobile-cli/internal/session"
)

// Parameter extraction helpers for tool argument maps

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		// Handle numeric values that JSON may parse as int/float
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func intParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

func floatParam(params map[string]interface{}, key string, defaultVal float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return defaultVal
}

// requireSession returns the active session or an error telling the agent to
// connect first.
func (s *mcpServer) requireSession() (*session.Session, error) {
	sess := s.registry.Get()
	if sess == nil {
		return nil, fmt.Errorf("no active session: call connect first")
	}
	return sess, nil
}

// resolveTarget resolves a tool's element parameters to a driver element id.
// An explicit strategy and selector pair is used directly. Otherwise text is
// matched against the parsed page source and the matched element's locators
// are tried in ranked order.
func (s *mcpServer) resolveTarget(ctx context.Context, sess *session.Session, params map[string]interface{}) (string, model.Candidate, error) {
	strategy := stringParam(params, "strategy", "")
	selector := stringParam(params, "selector", "")
	if strategy != "" || selector != "" {
		if strategy == "" || selector == "" {
			return "", model.Candidate{}, fmt.Errorf("strategy and selector must be provided together")
		}
		id, err := sess.Driver.FindElement(ctx, strategy, selector)
		if err != nil {
			return "", model.Candidate{}, err
		}
		return id, model.Candidate{Strategy: strategy, Selector: selector}, nil
	}

	text := stringParam(params, "text", "")
	if text == "" {
		return "", model.Candidate{}, fmt.Errorf("specify strategy and selector, or text")
	}
	exact := boolParam(params, "exact", false)

	source, err := s.cache.pageSource(ctx, sess)
	if err != nil {
		return "", model.Candidate{}, err
	}
	elements, _, err := locator.Elements(source, sess.Platform, locator.Options{})
	if err != nil {
		return "", model.Candidate{}, err
	}

	matches := matchElementsByText(elements, text, exact)
	if len(matches) == 0 {
		return "", model.Candidate{}, fmt.Errorf("no element matching %q on the current screen", text)
	}
	if len(matches) > 1 {
		return "", model.Candidate{}, fmt.Errorf("%d elements match %q: %s (refine with exact or an explicit selector)",
			len(matches), text, summarizeMatches(matches))
	}

	id, used, found, err := sess.Driver.FindByLocators(ctx, locator.Ranked(matches[0].Locators))
	if err != nil {
		return "", model.Candidate{}, err
	}
	if !found {
		return "", model.Candidate{}, fmt.Errorf("element matching %q is in the page source but none of its locators resolved", text)
	}
	return id, used, nil
}

// matchElementsByText returns the elements whose text or accessibility label
// matches. Matching is a case-insensitive substring check, or equality when
// exact is set.
func matchElementsByText(elements []model.Element, text string, exact bool) []model.Element {
	var matches []model.Element
	for _, el := range elements {
		if textMatchesElement(el, text, exact) {
			matches = append(matches, el)
		}
	}
	return matches
}

func textMatchesElement(el model.Element, text string, exact bool) bool {
	if exact {
		return strings.EqualFold(el.Text, text) || strings.EqualFold(el.ContentDesc, text)
	}
	lower := strings.ToLower(text)
	return strings.Contains(strings.ToLower(el.Text), lower) ||
		strings.Contains(strings.ToLower(el.ContentDesc), lower)
}

// summarizeMatches renders a short candidate list for ambiguity errors so
// the agent can refine its query.
func summarizeMatches(matches []model.Element) string {
	const limit = 5
	parts := make([]string, 0, limit)
	for i, el := range matches {
		if i == limit {
			parts = append(parts, fmt.Sprintf("and %d more", len(matches)-limit))
			break
		}
		label := el.Text
		if label == "" {
			label = el.ContentDesc
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", label, el.TagName))
	}
	return strings.Join(parts, ", ")
}

// dismissButtonLabels are tried in order when no explicit button is given,
// affirmative labels first.
var dismissButtonLabels = []string{
	"Allow", "While using the app", "OK", "Got it", "Continue",
	"Dismiss", "Close", "Cancel", "Not now", "No thanks", "Later",
}

// dismissAlert looks for a known dismissal button on the current screen and
// taps the first one that resolves. A screen without any such button is not
// an error.
func (s *mcpServer) dismissAlert(ctx context.Context, sess *session.Session, button string) (string, bool, error) {
	source, err := s.cache.pageSource(ctx, sess)
	if err != nil {
		return "", false, err
	}
	elements, _, err := locator.Elements(source, sess.Platform, locator.Options{})
	if err != nil {
		return "", false, err
	}

	labels := dismissButtonLabels
	if button != "" {
		labels = []string{button}
	}

	for _, label := range labels {
		for _, el := range elements {
			if !strings.EqualFold(el.Text, label) && !strings.EqualFold(el.ContentDesc, label) {
				continue
			}
			id, _, found, err := sess.Driver.FindByLocators(ctx, locator.Ranked(el.Locators))
			if err != nil {
				return "", false, err
			}
			if !found {
				continue
			}
			if err := sess.Driver.Click(ctx, id); err != nil {
				return "", false, err
			}
			return label, true, nil
		}
	}
	return "", false, nil
}
