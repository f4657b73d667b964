package model

// Locator strategy names as the automation backends expect them on the wire.
const (
	StrategyAccessibilityID = "accessibility id"
	StrategyResourceID      = "id"
	StrategyUIAutomator     = "-android uiautomator"
	StrategyIOSPredicate    = "-ios predicate string"
	StrategyClassName       = "class name"
)

// Candidate pairs a locator strategy with its selector value.
type Candidate struct {
	Strategy string `yaml:"strategy" json:"strategy"`
	Selector string `yaml:"selector" json:"selector"`
}
