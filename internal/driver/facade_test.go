package driver

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// fakeNative records every call and serves canned results. Setting err makes
// every method fail with it.
type fakeNative struct {
	calls         []string
	err           error
	executeScript string
	executeParams map[string]interface{}
	actions       []interface{}
	elementID     string
	text          string
	source        string
	screenshot    string
	contextName   string
	contexts      []string
	rect          Rect
	findResult    string
}

func (f *fakeNative) Execute(_ context.Context, script string, params map[string]interface{}) (interface{}, error) {
	f.calls = append(f.calls, "execute")
	f.executeScript = script
	f.executeParams = params
	if f.err != nil {
		return nil, f.err
	}
	return "native-result", nil
}

func (f *fakeNative) Click(_ context.Context, elementID string) error {
	f.calls = append(f.calls, "click")
	f.elementID = elementID
	return f.err
}

func (f *fakeNative) SetValue(_ context.Context, elementID, text string) error {
	f.calls = append(f.calls, "setValue")
	f.elementID = elementID
	f.text = text
	return f.err
}

func (f *fakeNative) GetText(_ context.Context, elementID string) (string, error) {
	f.calls = append(f.calls, "getText")
	f.elementID = elementID
	return f.text, f.err
}

func (f *fakeNative) GetElementRect(_ context.Context, elementID string) (Rect, error) {
	f.calls = append(f.calls, "getElementRect")
	f.elementID = elementID
	return f.rect, f.err
}

func (f *fakeNative) GetWindowRect(_ context.Context) (Rect, error) {
	f.calls = append(f.calls, "getWindowRect")
	return f.rect, f.err
}

func (f *fakeNative) PerformActions(_ context.Context, actions []interface{}) error {
	f.calls = append(f.calls, "performActions")
	f.actions = actions
	return f.err
}

func (f *fakeNative) GetPageSource(_ context.Context) (string, error) {
	f.calls = append(f.calls, "getPageSource")
	return f.source, f.err
}

func (f *fakeNative) GetScreenshot(_ context.Context) (string, error) {
	f.calls = append(f.calls, "getScreenshot")
	return f.screenshot, f.err
}

func (f *fakeNative) GetCurrentContext(_ context.Context) (string, error) {
	f.calls = append(f.calls, "getCurrentContext")
	return f.contextName, f.err
}

func (f *fakeNative) GetContexts(_ context.Context) ([]string, error) {
	f.calls = append(f.calls, "getContexts")
	return f.contexts, f.err
}

func (f *fakeNative) SetContext(_ context.Context, name string) error {
	f.calls = append(f.calls, "setContext")
	f.contextName = name
	return f.err
}

func (f *fakeNative) ActivateApp(_ context.Context, appID string) error {
	f.calls = append(f.calls, "activateApp")
	f.text = appID
	return f.err
}

func (f *fakeNative) FindElement(_ context.Context, strategy, selector string) (string, error) {
	f.calls = append(f.calls, "findElement:"+strategy)
	if f.err != nil {
		return "", f.err
	}
	return f.findResult, nil
}

func (f *fakeNative) DeleteSession(_ context.Context) error {
	f.calls = append(f.calls, "deleteSession")
	return f.err
}

// fakeRemote records every call against the WebDriver-protocol port.
type fakeRemote struct {
	calls      []string
	err        error
	script     string
	args       []interface{}
	elementID  string
	text       string
	seqs       []ActionSequence
	rect       Rect
	source     string
	screenshot string
	findResult string
}

func (f *fakeRemote) ExecuteScript(_ context.Context, script string, args []interface{}) (interface{}, error) {
	f.calls = append(f.calls, "executeScript")
	f.script = script
	f.args = args
	if f.err != nil {
		return nil, f.err
	}
	return "remote-result", nil
}

func (f *fakeRemote) ElementClick(_ context.Context, elementID string) error {
	f.calls = append(f.calls, "elementClick")
	f.elementID = elementID
	return f.err
}

func (f *fakeRemote) ElementSendKeys(_ context.Context, elementID, text string) error {
	f.calls = append(f.calls, "elementSendKeys")
	f.elementID = elementID
	f.text = text
	return f.err
}

func (f *fakeRemote) GetElementText(_ context.Context, elementID string) (string, error) {
	f.calls = append(f.calls, "getElementText")
	f.elementID = elementID
	return f.text, f.err
}

func (f *fakeRemote) GetElementRect(_ context.Context, elementID string) (Rect, error) {
	f.calls = append(f.calls, "getElementRect")
	f.elementID = elementID
	return f.rect, f.err
}

func (f *fakeRemote) GetWindowRect(_ context.Context) (Rect, error) {
	f.calls = append(f.calls, "getWindowRect")
	return f.rect, f.err
}

func (f *fakeRemote) PerformActions(_ context.Context, actions []ActionSequence) error {
	f.calls = append(f.calls, "performActions")
	f.seqs = actions
	return f.err
}

func (f *fakeRemote) GetPageSource(_ context.Context) (string, error) {
	f.calls = append(f.calls, "getPageSource")
	return f.source, f.err
}

func (f *fakeRemote) TakeScreenshot(_ context.Context) (string, error) {
	f.calls = append(f.calls, "takeScreenshot")
	return f.screenshot, f.err
}

func (f *fakeRemote) ActivateApp(_ context.Context, appID string) error {
	f.calls = append(f.calls, "activateApp")
	f.text = appID
	return f.err
}

func (f *fakeRemote) FindElement(_ context.Context, strategy, selector string) (string, error) {
	f.calls = append(f.calls, "findElement:"+strategy)
	if f.err != nil {
		return "", f.err
	}
	return f.findResult, nil
}

func (f *fakeRemote) DeleteSession(_ context.Context) error {
	f.calls = append(f.calls, "deleteSession")
	return f.err
}

func TestExecute_NativePassesParamsAsObject(t *testing.T) {
	native := &fakeNative{}
	inst := NewAndroid(native)
	params := map[string]interface{}{"direction": "up", "percent": 0.5}

	result, err := inst.Execute(context.Background(), "mobile: swipeGesture", params)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if result != "native-result" {
		t.Errorf("result: got %v", result)
	}
	if native.executeScript != "mobile: swipeGesture" {
		t.Errorf("script: got %q", native.executeScript)
	}
	if !reflect.DeepEqual(native.executeParams, params) {
		t.Errorf("params: got %v, want the object unwrapped", native.executeParams)
	}
}

func TestExecute_RemoteWrapsParamsInArray(t *testing.T) {
	remote := &fakeRemote{}
	inst := NewRemote(remote)
	params := map[string]interface{}{"direction": "up"}

	_, err := inst.Execute(context.Background(), "mobile: swipeGesture", params)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	want := []interface{}{params}
	if !reflect.DeepEqual(remote.args, want) {
		t.Errorf("args: got %v, want params wrapped in a single-element array", remote.args)
	}
}

func TestVerbMapping_Remote(t *testing.T) {
	remote := &fakeRemote{text: "hello"}
	inst := NewRemote(remote)
	ctx := context.Background()

	if err := inst.Click(ctx, "el-1"); err != nil {
		t.Fatalf("click failed: %v", err)
	}
	if err := inst.SetValue(ctx, "el-2", "hi"); err != nil {
		t.Fatalf("setValue failed: %v", err)
	}
	if _, err := inst.GetText(ctx, "el-3"); err != nil {
		t.Fatalf("getText failed: %v", err)
	}
	if _, err := inst.GetScreenshot(ctx); err != nil {
		t.Fatalf("getScreenshot failed: %v", err)
	}

	want := []string{"elementClick", "elementSendKeys", "getElementText", "takeScreenshot"}
	if !reflect.DeepEqual(remote.calls, want) {
		t.Errorf("remote verbs: got %v, want %v", remote.calls, want)
	}
}

func TestVerbMapping_Native(t *testing.T) {
	native := &fakeNative{}
	inst := NewIOS(native)
	ctx := context.Background()

	if err := inst.Click(ctx, "el-1"); err != nil {
		t.Fatalf("click failed: %v", err)
	}
	if err := inst.SetValue(ctx, "el-1", "hi"); err != nil {
		t.Fatalf("setValue failed: %v", err)
	}
	if _, err := inst.GetText(ctx, "el-1"); err != nil {
		t.Fatalf("getText failed: %v", err)
	}
	if _, err := inst.GetScreenshot(ctx); err != nil {
		t.Fatalf("getScreenshot failed: %v", err)
	}

	want := []string{"click", "setValue", "getText", "getScreenshot"}
	if !reflect.DeepEqual(native.calls, want) {
		t.Errorf("native verbs: got %v, want %v", native.calls, want)
	}
}

func TestDispatchOnlyOperations(t *testing.T) {
	native := &fakeNative{rect: Rect{X: 1, Y: 2, Width: 3, Height: 4}, source: "<hierarchy/>"}
	remote := &fakeRemote{rect: Rect{X: 5, Y: 6, Width: 7, Height: 8}, source: "<AppiumAUT/>"}
	ctx := context.Background()

	for _, tt := range []struct {
		name string
		inst *Instance
		rect Rect
	}{
		{"android", NewAndroid(native), native.rect},
		{"remote", NewRemote(remote), remote.rect},
	} {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.inst.GetElementRect(ctx, "el-1")
			if err != nil {
				t.Fatalf("getElementRect failed: %v", err)
			}
			if r != tt.rect {
				t.Errorf("element rect: got %+v, want %+v", r, tt.rect)
			}
			if r, err = tt.inst.GetWindowRect(ctx); err != nil || r != tt.rect {
				t.Errorf("window rect: got %+v err=%v", r, err)
			}
			if _, err := tt.inst.GetPageSource(ctx); err != nil {
				t.Errorf("getPageSource failed: %v", err)
			}
			if err := tt.inst.ActivateApp(ctx, "com.example.app"); err != nil {
				t.Errorf("activateApp failed: %v", err)
			}
			if err := tt.inst.Close(ctx); err != nil {
				t.Errorf("close failed: %v", err)
			}
		})
	}
}

func TestPerformActions_NativeTakesLooseShape(t *testing.T) {
	native := &fakeNative{}
	inst := NewAndroid(native)
	actions := SwipeActions(100, 800, 100, 200, 300)

	if err := inst.PerformActions(context.Background(), actions); err != nil {
		t.Fatalf("performActions failed: %v", err)
	}
	if !reflect.DeepEqual(native.actions, actions) {
		t.Error("loose actions should pass through to the native driver unchanged")
	}
}

func TestPerformActions_RemoteGetsTypedSequences(t *testing.T) {
	remote := &fakeRemote{}
	inst := NewRemote(remote)

	if err := inst.PerformActions(context.Background(), SwipeActions(100, 800, 100, 200, 300)); err != nil {
		t.Fatalf("performActions failed: %v", err)
	}
	if len(remote.seqs) != 1 {
		t.Fatalf("expected 1 sequence, got %d", len(remote.seqs))
	}
	seq := remote.seqs[0]
	if seq.Type != "pointer" || seq.ID != "finger1" {
		t.Errorf("sequence header: got %+v", seq)
	}
	if seq.Parameters == nil || seq.Parameters.PointerType != "touch" {
		t.Errorf("pointer type: got %+v", seq.Parameters)
	}
	if len(seq.Actions) != 4 {
		t.Fatalf("expected 4 actions, got %d", len(seq.Actions))
	}
	press := seq.Actions[0]
	if press.Type != "pointerMove" || press.X != 100 || press.Y != 800 {
		t.Errorf("first action: got %+v", press)
	}
	move := seq.Actions[2]
	if move.Type != "pointerMove" || move.X != 100 || move.Y != 200 || move.Duration != 300 {
		t.Errorf("move action: got %+v", move)
	}
}

func TestPerformActions_RemoteRejectsMalformedShape(t *testing.T) {
	remote := &fakeRemote{}
	inst := NewRemote(remote)

	err := inst.PerformActions(context.Background(), []interface{}{"not a sequence"})
	if err == nil {
		t.Fatal("expected an error for a malformed action shape")
	}
	if len(remote.calls) != 0 {
		t.Errorf("no wire call should happen on adaptation failure, got %v", remote.calls)
	}
}

func TestContextOperations_UnsupportedOnRemote(t *testing.T) {
	remote := &fakeRemote{}
	inst := NewRemote(remote)
	ctx := context.Background()

	var unsupported *UnsupportedOperationError

	if _, err := inst.GetCurrentContext(ctx); !errors.As(err, &unsupported) {
		t.Errorf("getCurrentContext: expected UnsupportedOperationError, got %v", err)
	}
	if _, err := inst.GetContexts(ctx); !errors.As(err, &unsupported) {
		t.Errorf("getContexts: expected UnsupportedOperationError, got %v", err)
	}
	if err := inst.SetContext(ctx, "WEBVIEW_1"); !errors.As(err, &unsupported) {
		t.Errorf("setContext: expected UnsupportedOperationError, got %v", err)
	}
	if len(remote.calls) != 0 {
		t.Errorf("no wire call may reach the remote client, got %v", remote.calls)
	}
}

func TestContextOperations_Native(t *testing.T) {
	native := &fakeNative{contextName: "NATIVE_APP", contexts: []string{"NATIVE_APP", "WEBVIEW_chrome"}}
	inst := NewAndroid(native)
	ctx := context.Background()

	name, err := inst.GetCurrentContext(ctx)
	if err != nil || name != "NATIVE_APP" {
		t.Errorf("getCurrentContext: got %q err=%v", name, err)
	}
	names, err := inst.GetContexts(ctx)
	if err != nil || len(names) != 2 {
		t.Errorf("getContexts: got %v err=%v", names, err)
	}
	if err := inst.SetContext(ctx, "WEBVIEW_chrome"); err != nil {
		t.Errorf("setContext failed: %v", err)
	}
	if native.contextName != "WEBVIEW_chrome" {
		t.Errorf("context not passed through: got %q", native.contextName)
	}
}

func TestClassification_UnknownVariantIsFatal(t *testing.T) {
	var unknown *UnknownVariantError

	tests := []struct {
		name string
		inst *Instance
	}{
		{"nil instance", nil},
		{"android tag without handle", &Instance{kind: KindAndroid}},
		{"remote tag without handle", &Instance{kind: KindRemote}},
		{"tag outside the variants", &Instance{kind: Kind(42)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.inst.GetPageSource(context.Background())
			if !errors.As(err, &unknown) {
				t.Errorf("expected UnknownVariantError, got %v", err)
			}
			if err := tt.inst.Click(context.Background(), "el-1"); !errors.As(err, &unknown) {
				t.Errorf("expected UnknownVariantError, got %v", err)
			}
		})
	}
}

func TestErrors_CarryOperationPrefixAndOriginalMessage(t *testing.T) {
	backendErr := errors.New("socket hang up (ECONNRESET)")
	native := &fakeNative{err: backendErr}
	inst := NewAndroid(native)

	err := inst.Click(context.Background(), "el-1")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.HasPrefix(err.Error(), "click: ") {
		t.Errorf("error should be prefixed with the operation name, got %q", err)
	}
	if !strings.Contains(err.Error(), "socket hang up (ECONNRESET)") {
		t.Errorf("underlying message must survive unchanged, got %q", err)
	}
	if !errors.Is(err, backendErr) {
		t.Error("underlying error must stay unwrappable")
	}
}
