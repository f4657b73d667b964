package model

// Element is the full locator view of one page-source node. Locators holds
// every viable strategy for the node, keyed by strategy name, so a caller can
// fall back to the next-best strategy when resolution fails.
type Element struct {
	TagName     string            `yaml:"tagName"               json:"tagName"`
	Locators    map[string]string `yaml:"locators"              json:"locators"`
	Text        string            `yaml:"text,omitempty"        json:"text,omitempty"`
	ContentDesc string            `yaml:"contentDesc,omitempty" json:"contentDesc,omitempty"`
	ResourceID  string            `yaml:"resourceId,omitempty"  json:"resourceId,omitempty"`
	Clickable   bool              `yaml:"clickable"             json:"clickable"`
	Enabled     bool              `yaml:"enabled"               json:"enabled"`
	Displayed   bool              `yaml:"displayed"             json:"displayed"`
}

// FilteredElement is the compact projection of an interactive node: just the
// best locator plus the state an agent needs to decide whether to act on it.
type FilteredElement struct {
	Type      string `yaml:"type"           json:"type"`
	Text      string `yaml:"text,omitempty" json:"text,omitempty"`
	Strategy  string `yaml:"strategy"       json:"strategy"`
	Selector  string `yaml:"selector"       json:"selector"`
	Bounds    string `yaml:"bounds"         json:"bounds"`
	Enabled   bool   `yaml:"enabled"        json:"enabled"`
	Clickable bool   `yaml:"clickable"      json:"clickable"`
}

// SourceStats summarizes a page-source filtering pass.
type SourceStats struct {
	TotalElements        int `yaml:"totalElements"        json:"totalElements"`
	FilteredElements     int `yaml:"filteredElements"     json:"filteredElements"`
	InteractableElements int `yaml:"interactableElements" json:"interactableElements"`
}
