// Package webdriver is a minimal WebDriver-protocol HTTP client, enough to
// drive an Appium server as the remote backend: session lifecycle, element
// lookup and interaction, W3C actions, page source, and screenshots. Every
// response rides the protocol's {"value": …} envelope; error payloads are
// surfaced unchanged. Cancellation belongs to the caller's context; the
// client sets no timeouts of its own.
package webdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mj1618/mobile-cli/internal/driver"
)

// w3cElementKey is the W3C WebDriver element identifier key. Older servers
// answer with the legacy "ELEMENT" key instead.
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// Error is a WebDriver error response, carried unchanged from the server.
type Error struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return e.Code + ": " + e.Message
	case e.Message != "":
		return e.Message
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("webdriver request failed with status %d", e.HTTPStatus)
	}
}

// Client talks to one WebDriver endpoint. It is bound to at most one session
// at a time; NewSession binds it, DeleteSession releases it.
type Client struct {
	baseURL   string
	sessionID string
	http      *http.Client
}

// NewClient returns a client for the given server URL, e.g.
// "http://127.0.0.1:4723".
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		http:    &http.Client{},
	}
}

// SessionID returns the bound session id, or "" when none is active.
func (c *Client) SessionID() string {
	return c.sessionID
}

// NewSession opens a session with the given W3C capabilities and binds the
// client to it.
func (c *Client) NewSession(ctx context.Context, capabilities map[string]interface{}) (string, error) {
	body := map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": capabilities,
		},
	}
	var value struct {
		SessionID    string                 `json:"sessionId"`
		Capabilities map[string]interface{} `json:"capabilities"`
	}
	if err := c.do(ctx, http.MethodPost, "/session", body, &value); err != nil {
		return "", err
	}
	if value.SessionID == "" {
		return "", fmt.Errorf("server answered without a session id")
	}
	c.sessionID = value.SessionID
	return value.SessionID, nil
}

// DeleteSession closes the bound session.
func (c *Client) DeleteSession(ctx context.Context) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodDelete, c.sessionPath(""), nil, nil); err != nil {
		return err
	}
	c.sessionID = ""
	return nil
}

// FindElement resolves a locator to an element id.
func (c *Client) FindElement(ctx context.Context, strategy, selector string) (string, error) {
	if err := c.requireSession(); err != nil {
		return "", err
	}
	body := map[string]interface{}{"using": strategy, "value": selector}
	var value map[string]string
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/element"), body, &value); err != nil {
		return "", err
	}
	if id, ok := value[w3cElementKey]; ok && id != "" {
		return id, nil
	}
	if id, ok := value["ELEMENT"]; ok && id != "" {
		return id, nil
	}
	return "", fmt.Errorf("element response carried no element id")
}

// ElementClick taps the element.
func (c *Client) ElementClick(ctx context.Context, elementID string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, c.elementPath(elementID, "/click"), map[string]interface{}{}, nil)
}

// ElementSendKeys types text into the element.
func (c *Client) ElementSendKeys(ctx context.Context, elementID, text string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	body := map[string]interface{}{"text": text}
	return c.do(ctx, http.MethodPost, c.elementPath(elementID, "/value"), body, nil)
}

// GetElementText reads the element's visible text.
func (c *Client) GetElementText(ctx context.Context, elementID string) (string, error) {
	if err := c.requireSession(); err != nil {
		return "", err
	}
	var text string
	if err := c.do(ctx, http.MethodGet, c.elementPath(elementID, "/text"), nil, &text); err != nil {
		return "", err
	}
	return text, nil
}

// GetElementRect returns the element's rectangle.
func (c *Client) GetElementRect(ctx context.Context, elementID string) (driver.Rect, error) {
	if err := c.requireSession(); err != nil {
		return driver.Rect{}, err
	}
	return c.getRect(ctx, c.elementPath(elementID, "/rect"))
}

// GetWindowRect returns the window rectangle.
func (c *Client) GetWindowRect(ctx context.Context) (driver.Rect, error) {
	if err := c.requireSession(); err != nil {
		return driver.Rect{}, err
	}
	return c.getRect(ctx, c.sessionPath("/window/rect"))
}

// ExecuteScript runs a script (for Appium, a "mobile: …" extension) with the
// given argument array.
func (c *Client) ExecuteScript(ctx context.Context, script string, args []interface{}) (interface{}, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	if args == nil {
		args = []interface{}{}
	}
	body := map[string]interface{}{"script": script, "args": args}
	var result interface{}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/execute/sync"), body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// PerformActions submits a W3C action payload.
func (c *Client) PerformActions(ctx context.Context, actions []driver.ActionSequence) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	body := map[string]interface{}{"actions": actions}
	return c.do(ctx, http.MethodPost, c.sessionPath("/actions"), body, nil)
}

// GetPageSource returns the raw serialized UI hierarchy.
func (c *Client) GetPageSource(ctx context.Context) (string, error) {
	if err := c.requireSession(); err != nil {
		return "", err
	}
	var source string
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/source"), nil, &source); err != nil {
		return "", err
	}
	return source, nil
}

// TakeScreenshot returns the screen as base64 PNG.
func (c *Client) TakeScreenshot(ctx context.Context) (string, error) {
	if err := c.requireSession(); err != nil {
		return "", err
	}
	var b64 string
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/screenshot"), nil, &b64); err != nil {
		return "", err
	}
	return b64, nil
}

// ActivateApp foregrounds the app with the given package or bundle id.
func (c *Client) ActivateApp(ctx context.Context, appID string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	body := map[string]interface{}{"appId": appID}
	return c.do(ctx, http.MethodPost, c.sessionPath("/appium/device/activate_app"), body, nil)
}

func (c *Client) requireSession() error {
	if c.sessionID == "" {
		return fmt.Errorf("no active webdriver session")
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/session/" + c.sessionID + suffix
}

func (c *Client) elementPath(elementID, suffix string) string {
	return c.sessionPath("/element/" + elementID + suffix)
}

// getRect fetches and converts a rect value. Servers answer with JSON
// numbers, so the wire shape is float and the result is truncated to pixels.
func (c *Client) getRect(ctx context.Context, path string) (driver.Rect, error) {
	var value struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &value); err != nil {
		return driver.Rect{}, err
	}
	return driver.Rect{
		X:      int(value.X),
		Y:      int(value.Y),
		Width:  int(value.Width),
		Height: int(value.Height),
	}, nil
}

// do sends one request and decodes the {"value": …} envelope into out. A
// status of 400 or above decodes the value as a protocol error instead and
// returns it as *Error with the server's code and message untouched.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope struct {
		Value json.RawMessage `json:"value"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		wdErr := &Error{HTTPStatus: resp.StatusCode}
		if len(envelope.Value) > 0 {
			// Best effort; a non-protocol body still reports the status.
			_ = json.Unmarshal(envelope.Value, wdErr)
		}
		return wdErr
	}

	if out != nil && len(envelope.Value) > 0 {
		if err := json.Unmarshal(envelope.Value, out); err != nil {
			return fmt.Errorf("decode response value: %w", err)
		}
	}
	return nil
}
