package driver

import (
	"context"
	"fmt"
)

// Execute runs a mobile extension script ("mobile: …") on the backend. The
// native drivers take the params object as-is; the remote protocol takes
// script arguments as an array, so the params object rides as its single
// element. Same verb, incompatible wire shape.
func (i *Instance) Execute(ctx context.Context, script string, params map[string]interface{}) (interface{}, error) {
	kind, err := i.classify()
	if err != nil {
		return nil, err
	}
	var result interface{}
	switch kind {
	case KindAndroid, KindIOS:
		result, err = i.native.Execute(ctx, script, params)
	default:
		result, err = i.remote.ExecuteScript(ctx, script, []interface{}{params})
	}
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return result, nil
}

// Click taps the element. The remote protocol calls this elementClick.
func (i *Instance) Click(ctx context.Context, elementID string) error {
	kind, err := i.classify()
	if err != nil {
		return err
	}
	switch kind {
	case KindAndroid, KindIOS:
		err = i.native.Click(ctx, elementID)
	default:
		err = i.remote.ElementClick(ctx, elementID)
	}
	if err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

// SetValue types text into the element. The remote protocol calls this
// elementSendKeys.
func (i *Instance) SetValue(ctx context.Context, elementID, text string) error {
	kind, err := i.classify()
	if err != nil {
		return err
	}
	switch kind {
	case KindAndroid, KindIOS:
		err = i.native.SetValue(ctx, elementID, text)
	default:
		err = i.remote.ElementSendKeys(ctx, elementID, text)
	}
	if err != nil {
		return fmt.Errorf("setValue: %w", err)
	}
	return nil
}

// GetText reads the element's visible text. The remote protocol calls this
// getElementText.
func (i *Instance) GetText(ctx context.Context, elementID string) (string, error) {
	kind, err := i.classify()
	if err != nil {
		return "", err
	}
	var text string
	switch kind {
	case KindAndroid, KindIOS:
		text, err = i.native.GetText(ctx, elementID)
	default:
		text, err = i.remote.GetElementText(ctx, elementID)
	}
	if err != nil {
		return "", fmt.Errorf("getText: %w", err)
	}
	return text, nil
}

// GetElementRect returns the element's rectangle. Identical verb on every
// variant, dispatch only.
func (i *Instance) GetElementRect(ctx context.Context, elementID string) (Rect, error) {
	kind, err := i.classify()
	if err != nil {
		return Rect{}, err
	}
	var rect Rect
	switch kind {
	case KindAndroid, KindIOS:
		rect, err = i.native.GetElementRect(ctx, elementID)
	default:
		rect, err = i.remote.GetElementRect(ctx, elementID)
	}
	if err != nil {
		return Rect{}, fmt.Errorf("getElementRect: %w", err)
	}
	return rect, nil
}

// GetWindowRect returns the window rectangle. Dispatch only.
func (i *Instance) GetWindowRect(ctx context.Context) (Rect, error) {
	kind, err := i.classify()
	if err != nil {
		return Rect{}, err
	}
	var rect Rect
	switch kind {
	case KindAndroid, KindIOS:
		rect, err = i.native.GetWindowRect(ctx)
	default:
		rect, err = i.remote.GetWindowRect(ctx)
	}
	if err != nil {
		return Rect{}, fmt.Errorf("getWindowRect: %w", err)
	}
	return rect, nil
}

// PerformActions runs a gesture. The input is the loose action-sequence shape
// the native drivers accept; for the remote client it is adapted to the
// strictly-typed W3C shape first. Gestures are not idempotent and are never
// retried here.
func (i *Instance) PerformActions(ctx context.Context, actions []interface{}) error {
	kind, err := i.classify()
	if err != nil {
		return err
	}
	switch kind {
	case KindAndroid, KindIOS:
		err = i.native.PerformActions(ctx, actions)
	default:
		var seqs []ActionSequence
		seqs, err = toSequences(actions)
		if err == nil {
			err = i.remote.PerformActions(ctx, seqs)
		}
	}
	if err != nil {
		return fmt.Errorf("performActions: %w", err)
	}
	return nil
}

// GetPageSource returns the raw serialized UI hierarchy. Dispatch only.
func (i *Instance) GetPageSource(ctx context.Context) (string, error) {
	kind, err := i.classify()
	if err != nil {
		return "", err
	}
	var source string
	switch kind {
	case KindAndroid, KindIOS:
		source, err = i.native.GetPageSource(ctx)
	default:
		source, err = i.remote.GetPageSource(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("getPageSource: %w", err)
	}
	return source, nil
}

// GetScreenshot returns the screen as base64 PNG. The native drivers expose
// this as getScreenshot; the remote protocol's capture primitive is named
// takeScreenshot with the same return shape.
func (i *Instance) GetScreenshot(ctx context.Context) (string, error) {
	kind, err := i.classify()
	if err != nil {
		return "", err
	}
	var b64 string
	switch kind {
	case KindAndroid, KindIOS:
		b64, err = i.native.GetScreenshot(ctx)
	default:
		b64, err = i.remote.TakeScreenshot(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("getScreenshot: %w", err)
	}
	return b64, nil
}

// GetCurrentContext returns the active context (NATIVE_APP or a webview).
// Native variants only; the remote protocol has no context endpoints, and
// calling this against it is an explicit error, never a silent no-op.
func (i *Instance) GetCurrentContext(ctx context.Context) (string, error) {
	kind, err := i.classify()
	if err != nil {
		return "", err
	}
	if kind == KindRemote {
		return "", &UnsupportedOperationError{Op: "getCurrentContext", Kind: kind}
	}
	name, err := i.native.GetCurrentContext(ctx)
	if err != nil {
		return "", fmt.Errorf("getCurrentContext: %w", err)
	}
	return name, nil
}

// GetContexts lists the available contexts. Native variants only.
func (i *Instance) GetContexts(ctx context.Context) ([]string, error) {
	kind, err := i.classify()
	if err != nil {
		return nil, err
	}
	if kind == KindRemote {
		return nil, &UnsupportedOperationError{Op: "getContexts", Kind: kind}
	}
	names, err := i.native.GetContexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("getContexts: %w", err)
	}
	return names, nil
}

// SetContext switches the active context. Native variants only.
func (i *Instance) SetContext(ctx context.Context, name string) error {
	kind, err := i.classify()
	if err != nil {
		return err
	}
	if kind == KindRemote {
		return &UnsupportedOperationError{Op: "setContext", Kind: kind}
	}
	if err := i.native.SetContext(ctx, name); err != nil {
		return fmt.Errorf("setContext: %w", err)
	}
	return nil
}

// ActivateApp brings the app with the given package or bundle id to the
// foreground. Dispatch only.
func (i *Instance) ActivateApp(ctx context.Context, appID string) error {
	kind, err := i.classify()
	if err != nil {
		return err
	}
	switch kind {
	case KindAndroid, KindIOS:
		err = i.native.ActivateApp(ctx, appID)
	default:
		err = i.remote.ActivateApp(ctx, appID)
	}
	if err != nil {
		return fmt.Errorf("activateApp: %w", err)
	}
	return nil
}

// FindElement resolves a single locator to an element id. Dispatch only.
func (i *Instance) FindElement(ctx context.Context, strategy, selector string) (string, error) {
	kind, err := i.classify()
	if err != nil {
		return "", err
	}
	var elementID string
	switch kind {
	case KindAndroid, KindIOS:
		elementID, err = i.native.FindElement(ctx, strategy, selector)
	default:
		elementID, err = i.remote.FindElement(ctx, strategy, selector)
	}
	if err != nil {
		return "", fmt.Errorf("findElement: %w", err)
	}
	return elementID, nil
}

// Close tears down the backend session. Dispatch only; the caller owns
// when and how often this runs.
func (i *Instance) Close(ctx context.Context) error {
	kind, err := i.classify()
	if err != nil {
		return err
	}
	switch kind {
	case KindAndroid, KindIOS:
		err = i.native.DeleteSession(ctx)
	default:
		err = i.remote.DeleteSession(ctx)
	}
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
