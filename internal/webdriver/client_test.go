package webdriver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mj1618/mobile-cli/internal/driver"
)

type recordedRequest struct {
	method string
	path   string
	body   map[string]interface{}
}

// newTestClient starts a fake WebDriver server and returns a client bound to
// it. Requests are appended to the returned slice.
func newTestClient(t *testing.T, status int, responseBody string, requests *[]recordedRequest) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path}
		if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		*requests = append(*requests, rec)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(responseBody))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestClient_NewSession(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusOK,
		`{"value":{"sessionId":"sess-42","capabilities":{"platformName":"Android"}}}`,
		&requests)

	id, err := c.NewSession(context.Background(), map[string]interface{}{
		"platformName":          "Android",
		"appium:automationName": "UiAutomator2",
	})
	if err != nil {
		t.Fatalf("NewSession: unexpected error: %v", err)
	}
	if id != "sess-42" {
		t.Errorf("session id: got %q, want %q", id, "sess-42")
	}
	if c.SessionID() != "sess-42" {
		t.Errorf("client did not bind the session id: got %q", c.SessionID())
	}

	if len(requests) != 1 {
		t.Fatalf("request count: got %d, want 1", len(requests))
	}
	req := requests[0]
	if req.method != http.MethodPost || req.path != "/session" {
		t.Errorf("request: got %s %s, want POST /session", req.method, req.path)
	}
	caps, ok := req.body["capabilities"].(map[string]interface{})
	if !ok {
		t.Fatalf("request body carried no capabilities object: %v", req.body)
	}
	always, ok := caps["alwaysMatch"].(map[string]interface{})
	if !ok {
		t.Fatalf("capabilities carried no alwaysMatch object: %v", caps)
	}
	if always["platformName"] != "Android" {
		t.Errorf("alwaysMatch platformName: got %v, want Android", always["platformName"])
	}
}

func TestClient_NewSessionWithoutID(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusOK, `{"value":{"capabilities":{}}}`, &requests)

	if _, err := c.NewSession(context.Background(), nil); err == nil {
		t.Fatal("NewSession: expected an error for a response without a session id")
	}
	if c.SessionID() != "" {
		t.Errorf("client bound an empty session: got %q", c.SessionID())
	}
}

func TestClient_DeleteSession(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusOK, `{"value":null}`, &requests)
	c.sessionID = "sess-1"

	if err := c.DeleteSession(context.Background()); err != nil {
		t.Fatalf("DeleteSession: unexpected error: %v", err)
	}
	if c.SessionID() != "" {
		t.Errorf("session id survived deletion: got %q", c.SessionID())
	}
	if len(requests) != 1 {
		t.Fatalf("request count: got %d, want 1", len(requests))
	}
	if requests[0].method != http.MethodDelete || requests[0].path != "/session/sess-1" {
		t.Errorf("request: got %s %s, want DELETE /session/sess-1", requests[0].method, requests[0].path)
	}
}

func TestClient_FindElement(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantID   string
	}{
		{
			name:     "w3c element key",
			response: `{"value":{"element-6066-11e4-a52e-4f735466cecf":"elem-7"}}`,
			wantID:   "elem-7",
		},
		{
			name:     "legacy element key",
			response: `{"value":{"ELEMENT":"elem-legacy"}}`,
			wantID:   "elem-legacy",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests []recordedRequest
			c := newTestClient(t, http.StatusOK, tt.response, &requests)
			c.sessionID = "sess-1"

			id, err := c.FindElement(context.Background(), "accessibility id", "Submit")
			if err != nil {
				t.Fatalf("FindElement: unexpected error: %v", err)
			}
			if id != tt.wantID {
				t.Errorf("element id: got %q, want %q", id, tt.wantID)
			}

			req := requests[0]
			if req.path != "/session/sess-1/element" {
				t.Errorf("path: got %q, want /session/sess-1/element", req.path)
			}
			if req.body["using"] != "accessibility id" || req.body["value"] != "Submit" {
				t.Errorf("locator body: got %v", req.body)
			}
		})
	}
}

func TestClient_FindElementWithoutID(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusOK, `{"value":{}}`, &requests)
	c.sessionID = "sess-1"

	if _, err := c.FindElement(context.Background(), "id", "missing"); err == nil {
		t.Fatal("FindElement: expected an error for a response without an element id")
	}
}

func TestClient_ElementInteractions(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusOK, `{"value":null}`, &requests)
	c.sessionID = "sess-1"
	ctx := context.Background()

	if err := c.ElementClick(ctx, "elem-1"); err != nil {
		t.Fatalf("ElementClick: unexpected error: %v", err)
	}
	if err := c.ElementSendKeys(ctx, "elem-1", "hello"); err != nil {
		t.Fatalf("ElementSendKeys: unexpected error: %v", err)
	}

	if len(requests) != 2 {
		t.Fatalf("request count: got %d, want 2", len(requests))
	}
	if requests[0].path != "/session/sess-1/element/elem-1/click" {
		t.Errorf("click path: got %q", requests[0].path)
	}
	if requests[0].body == nil {
		t.Error("click request carried no JSON body")
	}
	if requests[1].path != "/session/sess-1/element/elem-1/value" {
		t.Errorf("send keys path: got %q", requests[1].path)
	}
	if requests[1].body["text"] != "hello" {
		t.Errorf("send keys body: got %v, want text=hello", requests[1].body)
	}
}

func TestClient_GetElementText(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusOK, `{"value":"Sign in"}`, &requests)
	c.sessionID = "sess-1"

	text, err := c.GetElementText(context.Background(), "elem-1")
	if err != nil {
		t.Fatalf("GetElementText: unexpected error: %v", err)
	}
	if text != "Sign in" {
		t.Errorf("text: got %q, want %q", text, "Sign in")
	}
	if requests[0].method != http.MethodGet || requests[0].path != "/session/sess-1/element/elem-1/text" {
		t.Errorf("request: got %s %s", requests[0].method, requests[0].path)
	}
}

func TestClient_Rects(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusOK, `{"value":{"x":10.0,"y":20.5,"width":350.9,"height":44.0}}`, &requests)
	c.sessionID = "sess-1"
	ctx := context.Background()

	want := driver.Rect{X: 10, Y: 20, Width: 350, Height: 44}
	rect, err := c.GetElementRect(ctx, "elem-1")
	if err != nil {
		t.Fatalf("GetElementRect: unexpected error: %v", err)
	}
	if rect != want {
		t.Errorf("element rect: got %+v, want %+v", rect, want)
	}

	rect, err = c.GetWindowRect(ctx)
	if err != nil {
		t.Fatalf("GetWindowRect: unexpected error: %v", err)
	}
	if rect != want {
		t.Errorf("window rect: got %+v, want %+v", rect, want)
	}

	if requests[0].path != "/session/sess-1/element/elem-1/rect" {
		t.Errorf("element rect path: got %q", requests[0].path)
	}
	if requests[1].path != "/session/sess-1/window/rect" {
		t.Errorf("window rect path: got %q", requests[1].path)
	}
}

func TestClient_ExecuteScript(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusOK, `{"value":{"battery":0.92}}`, &requests)
	c.sessionID = "sess-1"

	result, err := c.ExecuteScript(context.Background(), "mobile: batteryInfo", nil)
	if err != nil {
		t.Fatalf("ExecuteScript: unexpected error: %v", err)
	}
	value, ok := result.(map[string]interface{})
	if !ok || value["battery"] != 0.92 {
		t.Errorf("result: got %v, want battery map", result)
	}

	req := requests[0]
	if req.path != "/session/sess-1/execute/sync" {
		t.Errorf("path: got %q, want /session/sess-1/execute/sync", req.path)
	}
	if req.body["script"] != "mobile: batteryInfo" {
		t.Errorf("script: got %v", req.body["script"])
	}
	args, ok := req.body["args"].([]interface{})
	if !ok || len(args) != 0 {
		t.Errorf("nil args did not serialize as an empty array: got %v", req.body["args"])
	}
}

func TestClient_PerformActions(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusOK, `{"value":null}`, &requests)
	c.sessionID = "sess-1"

	seqs := []driver.ActionSequence{
		{
			Type:       "pointer",
			ID:         "finger1",
			Parameters: &driver.ActionParameters{PointerType: "touch"},
			Actions: []driver.Action{
				{Type: "pointerMove", Duration: 0, X: 100, Y: 200},
				{Type: "pointerDown", Button: 0},
				{Type: "pointerUp", Button: 0},
			},
		},
	}
	if err := c.PerformActions(context.Background(), seqs); err != nil {
		t.Fatalf("PerformActions: unexpected error: %v", err)
	}

	req := requests[0]
	if req.path != "/session/sess-1/actions" {
		t.Errorf("path: got %q, want /session/sess-1/actions", req.path)
	}
	actions, ok := req.body["actions"].([]interface{})
	if !ok || len(actions) != 1 {
		t.Fatalf("actions body: got %v", req.body)
	}
	seq, ok := actions[0].(map[string]interface{})
	if !ok || seq["type"] != "pointer" || seq["id"] != "finger1" {
		t.Errorf("sequence: got %v", actions[0])
	}
}

func TestClient_SourceAndScreenshot(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusOK, `{"value":"<hierarchy/>"}`, &requests)
	c.sessionID = "sess-1"

	source, err := c.GetPageSource(context.Background())
	if err != nil {
		t.Fatalf("GetPageSource: unexpected error: %v", err)
	}
	if source != "<hierarchy/>" {
		t.Errorf("source: got %q", source)
	}
	if requests[0].path != "/session/sess-1/source" {
		t.Errorf("source path: got %q", requests[0].path)
	}

	b64, err := c.TakeScreenshot(context.Background())
	if err != nil {
		t.Fatalf("TakeScreenshot: unexpected error: %v", err)
	}
	if b64 != "<hierarchy/>" {
		t.Errorf("screenshot passthrough: got %q", b64)
	}
	if requests[1].path != "/session/sess-1/screenshot" {
		t.Errorf("screenshot path: got %q", requests[1].path)
	}
}

func TestClient_ActivateApp(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusOK, `{"value":null}`, &requests)
	c.sessionID = "sess-1"

	if err := c.ActivateApp(context.Background(), "com.example.app"); err != nil {
		t.Fatalf("ActivateApp: unexpected error: %v", err)
	}
	req := requests[0]
	if req.path != "/session/sess-1/appium/device/activate_app" {
		t.Errorf("path: got %q", req.path)
	}
	if req.body["appId"] != "com.example.app" {
		t.Errorf("body: got %v, want appId=com.example.app", req.body)
	}
}

func TestClient_ProtocolError(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusNotFound,
		`{"value":{"error":"no such element","message":"An element could not be located on the page using the given search parameters.","stacktrace":"NoSuchElementError: ..."}}`,
		&requests)
	c.sessionID = "sess-1"

	_, err := c.FindElement(context.Background(), "id", "missing")
	if err == nil {
		t.Fatal("FindElement: expected a protocol error")
	}
	var wdErr *Error
	if !errors.As(err, &wdErr) {
		t.Fatalf("error type: got %T, want *Error", err)
	}
	if wdErr.HTTPStatus != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", wdErr.HTTPStatus, http.StatusNotFound)
	}
	if wdErr.Code != "no such element" {
		t.Errorf("code: got %q, want %q", wdErr.Code, "no such element")
	}
	want := "no such element: An element could not be located on the page using the given search parameters."
	if wdErr.Error() != want {
		t.Errorf("message: got %q, want %q", wdErr.Error(), want)
	}
}

func TestClient_ErrorWithoutProtocolBody(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusInternalServerError, `{"value":null}`, &requests)
	c.sessionID = "sess-1"

	err := c.ElementClick(context.Background(), "elem-1")
	var wdErr *Error
	if !errors.As(err, &wdErr) {
		t.Fatalf("error type: got %T, want *Error", err)
	}
	if wdErr.Error() != "webdriver request failed with status 500" {
		t.Errorf("message: got %q", wdErr.Error())
	}
}

func TestClient_RequiresSession(t *testing.T) {
	var requests []recordedRequest
	c := newTestClient(t, http.StatusOK, `{"value":null}`, &requests)

	if err := c.ElementClick(context.Background(), "elem-1"); err == nil {
		t.Fatal("ElementClick: expected an error without a bound session")
	}
	if _, err := c.GetPageSource(context.Background()); err == nil {
		t.Fatal("GetPageSource: expected an error without a bound session")
	}
	if len(requests) != 0 {
		t.Errorf("unbound client reached the server: %d requests", len(requests))
	}
}
