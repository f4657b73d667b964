package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/mobile-cli/internal/config"
	"github.com/mj1618/mobile-cli/internal/session"
)

// mcpServer wraps the MCP server with the session registry and source cache.
type mcpServer struct {
	cfg      config.Config
	registry *session.Registry
	cache    *mcpSourceCache
	// sessionMu serializes tool calls so the session cannot be swapped out
	// under a running operation.
	sessionMu sync.Mutex
	mcp       *mcpserver.MCPServer
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// newMCPServer creates and configures an MCP server with all mobile-cli tools.
func newMCPServer(cliCfg config.Config, cfg MCPConfig) *mcpServer {
	s := &mcpServer{
		cfg:      cliCfg,
		registry: session.NewRegistry(),
		cache:    newMCPSourceCache(cfg.CacheTTL),
	}

	s.mcp = mcpserver.NewMCPServer(
		"mobile-cli",
		"1.0.0",
	)

	s.registerTools()
	return s
}

// serve starts the MCP server with the configured transport.
func (s *mcpServer) serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *mcpServer) registerTools() {
	// connect
	s.mcp.AddTool(
		mcp.NewTool("connect",
			mcp.WithDescription("Open a device session on the Appium server. Replaces any existing session."),
			mcp.WithString("platform", mcp.Description("Target platform: android, ios (default from config)")),
			mcp.WithString("server_url", mcp.Description("Appium server URL (default from config)")),
			mcp.WithString("capabilities", mcp.Description("W3C capabilities as a JSON object string, replacing the defaults")),
		),
		s.handleConnect,
	)

	// disconnect
	s.mcp.AddTool(
		mcp.NewTool("disconnect",
			mcp.WithDescription("Close the active device session"),
		),
		s.handleDisconnect,
	)

	// source
	s.mcp.AddTool(
		mcp.NewTool("source",
			mcp.WithDescription("Read the current screen as a compact list of interactable elements with selectors, bounds, and state. Use raw for the full XML hierarchy."),
			mcp.WithBoolean("raw", mcp.Description("Return the raw page source XML instead of the filtered view")),
		),
		s.handleSource,
	)

	// elements
	s.mcp.AddTool(
		mcp.NewTool("elements",
			mcp.WithDescription("List interactable elements with every viable locator strategy per element"),
			mcp.WithBoolean("fetchable_only", mcp.Description("Keep only the single best locator per element")),
		),
		s.handleElements,
	)

	// find
	s.mcp.AddTool(
		mcp.NewTool("find",
			mcp.WithDescription("Resolve an element to a driver element ID by locator or by visible text"),
			mcp.WithString("strategy", mcp.Description("Locator strategy (e.g. 'accessibility id', 'id', 'class name')")),
			mcp.WithString("selector", mcp.Description("Locator selector, used with strategy")),
			mcp.WithString("text", mcp.Description("Find element by visible text or accessibility label")),
			mcp.WithBoolean("exact", mcp.Description("Require exact text match")),
		),
		s.handleFind,
	)

	// click
	s.mcp.AddTool(
		mcp.NewTool("click",
			mcp.WithDescription("Tap an element by locator or by visible text"),
			mcp.WithString("strategy", mcp.Description("Locator strategy")),
			mcp.WithString("selector", mcp.Description("Locator selector, used with strategy")),
			mcp.WithString("text", mcp.Description("Find element by visible text or accessibility label")),
			mcp.WithBoolean("exact", mcp.Description("Require exact text match")),
		),
		s.handleClick,
	)

	// set_value
	s.mcp.AddTool(
		mcp.NewTool("set_value",
			mcp.WithDescription("Type text into an input element"),
			mcp.WithString("value", mcp.Description("Text to enter"), mcp.Required()),
			mcp.WithString("strategy", mcp.Description("Locator strategy")),
			mcp.WithString("selector", mcp.Description("Locator selector, used with strategy")),
			mcp.WithString("text", mcp.Description("Find element by visible text or accessibility label")),
			mcp.WithBoolean("exact", mcp.Description("Require exact text match")),
		),
		s.handleSetValue,
	)

	// read_text
	s.mcp.AddTool(
		mcp.NewTool("read_text",
			mcp.WithDescription("Read the visible text of an element"),
			mcp.WithString("strategy", mcp.Description("Locator strategy")),
			mcp.WithString("selector", mcp.Description("Locator selector, used with strategy")),
			mcp.WithString("text", mcp.Description("Find element by visible text or accessibility label")),
			mcp.WithBoolean("exact", mcp.Description("Require exact text match")),
		),
		s.handleReadText,
	)

	// swipe
	s.mcp.AddTool(
		mcp.NewTool("swipe",
			mcp.WithDescription("Swipe across the screen, either by direction or between explicit coordinates"),
			mcp.WithString("direction", mcp.Description("Swipe direction: up, down, left, right")),
			mcp.WithNumber("start_x", mcp.Description("Start X coordinate")),
			mcp.WithNumber("start_y", mcp.Description("Start Y coordinate")),
			mcp.WithNumber("end_x", mcp.Description("End X coordinate")),
			mcp.WithNumber("end_y", mcp.Description("End Y coordinate")),
			mcp.WithNumber("duration_ms", mcp.Description("Swipe duration in milliseconds (default: 300)")),
		),
		s.handleSwipe,
	)

	// screenshot
	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture a screenshot of the device screen, downscaled for token efficiency"),
			mcp.WithNumber("scale", mcp.Description("Scale factor 0.1-1.0 (default from config)")),
			mcp.WithBoolean("save", mcp.Description("Also save the image to the screenshot directory (default: true)")),
		),
		s.handleScreenshot,
	)

	// execute
	s.mcp.AddTool(
		mcp.NewTool("execute",
			mcp.WithDescription("Run a mobile script command (e.g. 'mobile: scroll') with optional arguments"),
			mcp.WithString("script", mcp.Description("Script name, e.g. 'mobile: pressKey'"), mcp.Required()),
			mcp.WithString("args", mcp.Description("Script arguments as a JSON object string")),
		),
		s.handleExecute,
	)

	// contexts
	s.mcp.AddTool(
		mcp.NewTool("contexts",
			mcp.WithDescription("List the available contexts (native, webviews) and the current one"),
		),
		s.handleContexts,
	)

	// set_context
	s.mcp.AddTool(
		mcp.NewTool("set_context",
			mcp.WithDescription("Switch to a different context (e.g. a webview)"),
			mcp.WithString("name", mcp.Description("Context name, e.g. 'NATIVE_APP' or 'WEBVIEW_com.example'"), mcp.Required()),
		),
		s.handleSetContext,
	)

	// activate_app
	s.mcp.AddTool(
		mcp.NewTool("activate_app",
			mcp.WithDescription("Bring an app to the foreground by package or bundle id"),
			mcp.WithString("app_id", mcp.Description("Android package name or iOS bundle id"), mcp.Required()),
		),
		s.handleActivateApp,
	)

	// window_rect
	s.mcp.AddTool(
		mcp.NewTool("window_rect",
			mcp.WithDescription("Get the device window rectangle"),
		),
		s.handleWindowRect,
	)

	// dismiss_alert
	s.mcp.AddTool(
		mcp.NewTool("dismiss_alert",
			mcp.WithDescription("Dismiss a system dialog or permission prompt by tapping a common dismissal button"),
			mcp.WithString("button", mcp.Description("Button label to tap (default: try common labels)")),
		),
		s.handleDismissAlert,
	)
}
