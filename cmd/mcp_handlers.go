package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/mobile-cli/internal/config"
	"github.com/mj1618/mobile-cli/internal/driver"
	"github.com/mj1618/mobile-cli/internal/locator"
	"github.com/mj1618/mobile-cli/internal/model"
	"github.com/mj1618/mobile-cli/internal/output"
	"github.com/mj1618/mobile-cli/internal/session"
	"github.com/mj1618/mobile-cli/internal/webdriver"
	"github.com/rs/zerolog/log"
)

// connectResult is the output of the connect tool.
type connectResult struct {
	OK        bool   `yaml:"ok"        json:"ok"`
	SessionID string `yaml:"sessionId" json:"sessionId"`
	Platform  string `yaml:"platform"  json:"platform"`
	ServerURL string `yaml:"serverUrl" json:"serverUrl"`
}

// disconnectResult is the output of the disconnect tool.
type disconnectResult struct {
	OK     bool `yaml:"ok"     json:"ok"`
	Closed bool `yaml:"closed" json:"closed"`
}

// sourceResult is the filtered screen view returned by the source tool.
type sourceResult struct {
	Platform string                  `yaml:"platform" json:"platform"`
	Stats    model.SourceStats       `yaml:"stats"    json:"stats"`
	Elements []model.FilteredElement `yaml:"elements" json:"elements"`
}

// elementsResult is the full locator view returned by the elements tool.
type elementsResult struct {
	Platform string            `yaml:"platform" json:"platform"`
	Stats    model.SourceStats `yaml:"stats"    json:"stats"`
	Elements []model.Element   `yaml:"elements" json:"elements"`
}

// actionResult is the output of element-targeting tools.
type actionResult struct {
	OK        bool   `yaml:"ok"                  json:"ok"`
	Action    string `yaml:"action"              json:"action"`
	ElementID string `yaml:"elementId,omitempty" json:"elementId,omitempty"`
	Strategy  string `yaml:"strategy,omitempty"  json:"strategy,omitempty"`
	Selector  string `yaml:"selector,omitempty"  json:"selector,omitempty"`
	Text      string `yaml:"text,omitempty"      json:"text,omitempty"`
	Value     string `yaml:"value,omitempty"     json:"value,omitempty"`
}

// swipeResult is the output of the swipe tool.
type swipeResult struct {
	OK         bool   `yaml:"ok"         json:"ok"`
	Action     string `yaml:"action"     json:"action"`
	StartX     int    `yaml:"startX"     json:"startX"`
	StartY     int    `yaml:"startY"     json:"startY"`
	EndX       int    `yaml:"endX"       json:"endX"`
	EndY       int    `yaml:"endY"       json:"endY"`
	DurationMs int    `yaml:"durationMs" json:"durationMs"`
}

// screenshotResult describes a captured screenshot.
type screenshotResult struct {
	OK     bool    `yaml:"ok"             json:"ok"`
	Path   string  `yaml:"path,omitempty" json:"path,omitempty"`
	Width  int     `yaml:"width"          json:"width"`
	Height int     `yaml:"height"         json:"height"`
	Scale  float64 `yaml:"scale"          json:"scale"`
}

// executeResult is the output of the execute tool.
type executeResult struct {
	OK     bool        `yaml:"ok"               json:"ok"`
	Script string      `yaml:"script"           json:"script"`
	Result interface{} `yaml:"result,omitempty" json:"result,omitempty"`
}

// contextsResult is the output of the contexts tool.
type contextsResult struct {
	OK       bool     `yaml:"ok"       json:"ok"`
	Current  string   `yaml:"current"  json:"current"`
	Contexts []string `yaml:"contexts" json:"contexts"`
}

// windowRectResult is the output of the window_rect tool.
type windowRectResult struct {
	OK   bool        `yaml:"ok"   json:"ok"`
	Rect driver.Rect `yaml:"rect" json:"rect"`
}

// dismissResult is the output of the dismiss_alert tool.
type dismissResult struct {
	OK        bool   `yaml:"ok"               json:"ok"`
	Dismissed bool   `yaml:"dismissed"        json:"dismissed"`
	Button    string `yaml:"button,omitempty" json:"button,omitempty"`
}

// resultToText serializes a tool result to YAML for the MCP response.
func resultToText(v interface{}) string {
	text, err := output.MarshalText(output.FormatYAML, v)
	if err != nil {
		return fmt.Sprintf("ok: false\nerror: %s", err)
	}
	return text
}

func (s *mcpServer) handleConnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	platformName := stringParam(params, "platform", s.cfg.Platform)
	serverURL := stringParam(params, "server_url", s.cfg.ServerURL)

	// Configured capabilities apply when the platform matches the config;
	// connecting to the other platform starts from that platform's defaults.
	caps := config.DefaultCapabilities(platformName)
	if platformName == s.cfg.Platform {
		caps = s.cfg.SessionCapabilities()
	}
	if raw := stringParam(params, "capabilities", ""); raw != "" {
		caps = map[string]interface{}{}
		if err := json.Unmarshal([]byte(raw), &caps); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("capabilities must be a JSON object: %v", err)), nil
		}
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	// Close any session left over from a previous connect.
	if s.registry.Get() != nil {
		if _, err := s.registry.Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("closing previous session failed")
		}
	}

	client := webdriver.NewClient(serverURL)
	id, err := client.NewSession(ctx, caps)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("connect: %v", err)), nil
	}

	s.registry.Set(&session.Session{
		ID:       id,
		Platform: platformName,
		Driver:   driver.NewRemote(client),
	})
	s.cache.invalidateAll()

	log.Info().Str("sessionId", id).Str("platform", platformName).Msg("session connected")
	return mcp.NewToolResultText(resultToText(connectResult{
		OK:        true,
		SessionID: id,
		Platform:  platformName,
		ServerURL: serverURL,
	})), nil
}

func (s *mcpServer) handleDisconnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	closed, err := s.registry.Delete(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("disconnect: %v", err)), nil
	}
	s.cache.invalidateAll()

	if closed {
		log.Info().Msg("session disconnected")
	}
	return mcp.NewToolResultText(resultToText(disconnectResult{OK: true, Closed: closed})), nil
}

func (s *mcpServer) handleSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	raw := boolParam(params, "raw", false)

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	source, err := s.cache.pageSource(ctx, sess)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if raw {
		return mcp.NewToolResultText(source), nil
	}

	elements, stats, err := locator.FilterSource(source, sess.Platform)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(sourceResult{
		Platform: sess.Platform,
		Stats:    stats,
		Elements: elements,
	})), nil
}

func (s *mcpServer) handleElements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	fetchableOnly := boolParam(params, "fetchable_only", false)

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	source, err := s.cache.pageSource(ctx, sess)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	elements, stats, err := locator.Elements(source, sess.Platform, locator.Options{FetchableOnly: fetchableOnly})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(elementsResult{
		Platform: sess.Platform,
		Stats:    stats,
		Elements: elements,
	})), nil
}

func (s *mcpServer) handleFind(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, used, err := s.resolveTarget(ctx, sess, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(actionResult{
		OK:        true,
		Action:    "find",
		ElementID: id,
		Strategy:  used.Strategy,
		Selector:  used.Selector,
	})), nil
}

func (s *mcpServer) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, used, err := s.resolveTarget(ctx, sess, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := sess.Driver.Click(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.cache.invalidateSession(sess.ID)

	return mcp.NewToolResultText(resultToText(actionResult{
		OK:        true,
		Action:    "click",
		ElementID: id,
		Strategy:  used.Strategy,
		Selector:  used.Selector,
	})), nil
}

func (s *mcpServer) handleSetValue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	value, ok := params["value"].(string)
	if !ok {
		return mcp.NewToolResultError("value parameter is required"), nil
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, used, err := s.resolveTarget(ctx, sess, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := sess.Driver.SetValue(ctx, id, value); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.cache.invalidateSession(sess.ID)

	return mcp.NewToolResultText(resultToText(actionResult{
		OK:        true,
		Action:    "set_value",
		ElementID: id,
		Strategy:  used.Strategy,
		Selector:  used.Selector,
		Value:     value,
	})), nil
}

func (s *mcpServer) handleReadText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, used, err := s.resolveTarget(ctx, sess, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := sess.Driver.GetText(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(actionResult{
		OK:        true,
		Action:    "read_text",
		ElementID: id,
		Strategy:  used.Strategy,
		Selector:  used.Selector,
		Text:      text,
	})), nil
}

func (s *mcpServer) handleSwipe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	direction := stringParam(params, "direction", "")
	durationMs := intParam(params, "duration_ms", 300)

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var startX, startY, endX, endY int
	if direction != "" {
		rect, err := sess.Driver.GetWindowRect(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		switch direction {
		case "up":
			startX = rect.X + rect.Width/2
			startY = rect.Y + rect.Height*7/10
			endX = startX
			endY = rect.Y + rect.Height*3/10
		case "down":
			startX = rect.X + rect.Width/2
			startY = rect.Y + rect.Height*3/10
			endX = startX
			endY = rect.Y + rect.Height*7/10
		case "left":
			startX = rect.X + rect.Width*8/10
			startY = rect.Y + rect.Height/2
			endX = rect.X + rect.Width*2/10
			endY = startY
		case "right":
			startX = rect.X + rect.Width*2/10
			startY = rect.Y + rect.Height/2
			endX = rect.X + rect.Width*8/10
			endY = startY
		default:
			return mcp.NewToolResultError(fmt.Sprintf("invalid direction %q: use up, down, left, or right", direction)), nil
		}
	} else {
		if _, ok := params["start_x"]; !ok {
			return mcp.NewToolResultError("specify direction or start_x/start_y/end_x/end_y"), nil
		}
		startX = intParam(params, "start_x", 0)
		startY = intParam(params, "start_y", 0)
		endX = intParam(params, "end_x", 0)
		endY = intParam(params, "end_y", 0)
	}

	if err := sess.Driver.PerformActions(ctx, driver.SwipeActions(startX, startY, endX, endY, durationMs)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.cache.invalidateSession(sess.ID)

	return mcp.NewToolResultText(resultToText(swipeResult{
		OK:         true,
		Action:     "swipe",
		StartX:     startX,
		StartY:     startY,
		EndX:       endX,
		EndY:       endY,
		DurationMs: durationMs,
	})), nil
}

func (s *mcpServer) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	scale := floatParam(params, "scale", s.cfg.Screenshot.Scale)
	save := boolParam(params, "save", true)

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b64, err := sess.Driver.GetScreenshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, width, height, err := scaleScreenshot(b64, scale)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := screenshotResult{OK: true, Width: width, Height: height, Scale: scale}
	if save {
		path, err := saveScreenshot(s.cfg.Screenshot.Dir, data)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result.Path = path
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: resultToText(result),
			},
			mcp.ImageContent{
				Type:     "image",
				Data:     encodePNGBase64(data),
				MIMEType: "image/png",
			},
		},
	}, nil
}

func (s *mcpServer) handleExecute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	script := stringParam(params, "script", "")
	if script == "" {
		return mcp.NewToolResultError("script parameter is required"), nil
	}

	var scriptArgs map[string]interface{}
	if raw := stringParam(params, "args", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &scriptArgs); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("args must be a JSON object: %v", err)), nil
		}
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := sess.Driver.Execute(ctx, script, scriptArgs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.cache.invalidateSession(sess.ID)

	return mcp.NewToolResultText(resultToText(executeResult{
		OK:     true,
		Script: script,
		Result: result,
	})), nil
}

func (s *mcpServer) handleContexts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	contexts, err := sess.Driver.GetContexts(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	current, err := sess.Driver.GetCurrentContext(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(contextsResult{
		OK:       true,
		Current:  current,
		Contexts: contexts,
	})), nil
}

func (s *mcpServer) handleSetContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	name := stringParam(params, "name", "")
	if name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := sess.Driver.SetContext(ctx, name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.cache.invalidateSession(sess.ID)

	return mcp.NewToolResultText(resultToText(actionResult{
		OK:     true,
		Action: "set_context",
		Value:  name,
	})), nil
}

func (s *mcpServer) handleActivateApp(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	appID := stringParam(params, "app_id", "")
	if appID == "" {
		return mcp.NewToolResultError("app_id parameter is required"), nil
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := sess.Driver.ActivateApp(ctx, appID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.cache.invalidateSession(sess.ID)

	return mcp.NewToolResultText(resultToText(actionResult{
		OK:     true,
		Action: "activate_app",
		Value:  appID,
	})), nil
}

func (s *mcpServer) handleWindowRect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rect, err := sess.Driver.GetWindowRect(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(windowRectResult{OK: true, Rect: rect})), nil
}

func (s *mcpServer) handleDismissAlert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	button := stringParam(params, "button", "")

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	sess, err := s.requireSession()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	clicked, dismissed, err := s.dismissAlert(ctx, sess, button)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if dismissed {
		s.cache.invalidateSession(sess.ID)
		log.Debug().Str("button", clicked).Msg("alert dismissed")
	}
	return mcp.NewToolResultText(resultToText(dismissResult{
		OK:        true,
		Dismissed: dismissed,
		Button:    clicked,
	})), nil
}
