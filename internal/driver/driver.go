// Package driver normalizes device operations across the three automation
// backend variants: the two native mobile drivers and the remote WebDriver
// client. An Instance tags exactly one backend handle; every operation
// classifies the instance by its tag and routes to the backend's primitive,
// reconciling the places where the wire shapes diverge. The package performs
// no retries and no locking; callers serialize operations per instance.
package driver

import "context"

// Kind tags the backend variant of an Instance.
type Kind int

const (
	KindAndroid Kind = iota
	KindIOS
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindAndroid:
		return "android"
	case KindIOS:
		return "ios"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Rect is an element or window rectangle in screen pixels.
type Rect struct {
	X      int `yaml:"x"      json:"x"`
	Y      int `yaml:"y"      json:"y"`
	Width  int `yaml:"width"  json:"width"`
	Height int `yaml:"height" json:"height"`
}

// NativeDriver is the port to an on-device automation server (uiautomator2 on
// Android, XCUITest on iOS). Both expose the same direct verbs.
type NativeDriver interface {
	Execute(ctx context.Context, script string, params map[string]interface{}) (interface{}, error)
	Click(ctx context.Context, elementID string) error
	SetValue(ctx context.Context, elementID, text string) error
	GetText(ctx context.Context, elementID string) (string, error)
	GetElementRect(ctx context.Context, elementID string) (Rect, error)
	GetWindowRect(ctx context.Context) (Rect, error)
	PerformActions(ctx context.Context, actions []interface{}) error
	GetPageSource(ctx context.Context) (string, error)
	GetScreenshot(ctx context.Context) (string, error)
	GetCurrentContext(ctx context.Context) (string, error)
	GetContexts(ctx context.Context) ([]string, error)
	SetContext(ctx context.Context, name string) error
	ActivateApp(ctx context.Context, appID string) error
	FindElement(ctx context.Context, strategy, selector string) (string, error)
	DeleteSession(ctx context.Context) error
}

// RemoteClient is the port to a WebDriver-protocol endpoint. The verbs follow
// the protocol's naming, which is what the facade reconciles against the
// native port: elementClick for click, elementSendKeys for setValue,
// getElementText for getText, takeScreenshot for getScreenshot, and script
// arguments passed as an array. The protocol has no context endpoints.
type RemoteClient interface {
	ExecuteScript(ctx context.Context, script string, args []interface{}) (interface{}, error)
	ElementClick(ctx context.Context, elementID string) error
	ElementSendKeys(ctx context.Context, elementID, text string) error
	GetElementText(ctx context.Context, elementID string) (string, error)
	GetElementRect(ctx context.Context, elementID string) (Rect, error)
	GetWindowRect(ctx context.Context) (Rect, error)
	PerformActions(ctx context.Context, actions []ActionSequence) error
	GetPageSource(ctx context.Context) (string, error)
	TakeScreenshot(ctx context.Context) (string, error)
	ActivateApp(ctx context.Context, appID string) error
	FindElement(ctx context.Context, strategy, selector string) (string, error)
	DeleteSession(ctx context.Context) error
}

// Instance is the opaque handle to exactly one backend. The kind tag is the
// sole source of truth for routing; operations never probe for methods.
type Instance struct {
	kind   Kind
	native NativeDriver
	remote RemoteClient
}

// NewAndroid wraps a native Android driver.
func NewAndroid(d NativeDriver) *Instance {
	return &Instance{kind: KindAndroid, native: d}
}

// NewIOS wraps a native iOS driver.
func NewIOS(d NativeDriver) *Instance {
	return &Instance{kind: KindIOS, native: d}
}

// NewRemote wraps a WebDriver-protocol client.
func NewRemote(c RemoteClient) *Instance {
	return &Instance{kind: KindRemote, remote: c}
}

// Kind returns the instance's backend tag.
func (i *Instance) Kind() Kind {
	if i == nil {
		return Kind(-1)
	}
	return i.kind
}

// classify validates the tag and its handle before any routing decision. A
// nil instance, a tag outside the three variants, or a tag whose handle is
// missing is a fatal classification error, never a silent fallback.
func (i *Instance) classify() (Kind, error) {
	if i == nil {
		return Kind(-1), &UnknownVariantError{Kind: Kind(-1)}
	}
	switch i.kind {
	case KindAndroid, KindIOS:
		if i.native == nil {
			return i.kind, &UnknownVariantError{Kind: i.kind}
		}
	case KindRemote:
		if i.remote == nil {
			return i.kind, &UnknownVariantError{Kind: i.kind}
		}
	default:
		return i.kind, &UnknownVariantError{Kind: i.kind}
	}
	return i.kind, nil
}
