package driver

import (
	"context"

	"github.com/mj1618/mobile-cli/internal/model"
)

// FindByLocators tries each candidate in order until one resolves, and
// returns the element id together with the candidate that worked. Resolution
// failures drive the fallback to the next candidate; when none resolves,
// found is false with a nil error. The first candidate that resolves wins,
// with no check that it resolved to the intended element.
func (i *Instance) FindByLocators(ctx context.Context, candidates []model.Candidate) (elementID string, used model.Candidate, found bool, err error) {
	if _, err := i.classify(); err != nil {
		return "", model.Candidate{}, false, err
	}
	for _, c := range candidates {
		id, err := i.FindElement(ctx, c.Strategy, c.Selector)
		if err != nil {
			continue
		}
		return id, c, true, nil
	}
	return "", model.Candidate{}, false, nil
}
