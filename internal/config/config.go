// Package config loads the CLI configuration from a YAML file. Every field
// has a usable default, so running without a config file works out of the
// box against a local Appium server.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full CLI configuration.
type Config struct {
	// ServerURL is the WebDriver endpoint used for remote sessions.
	ServerURL string `yaml:"server_url" json:"server_url"`
	// Platform selects the driver family: "android" or "ios".
	Platform string `yaml:"platform" json:"platform"`
	// Capabilities are merged into the session request. When empty, a
	// default set for the platform is used.
	Capabilities map[string]interface{} `yaml:"capabilities" json:"capabilities"`
	Screenshot   ScreenshotConfig       `yaml:"screenshot" json:"screenshot"`
	LogLevel     string                 `yaml:"log_level" json:"log_level"`
}

// ScreenshotConfig controls where screenshots are written and how much they
// are downscaled before saving.
type ScreenshotConfig struct {
	Dir   string  `yaml:"dir" json:"dir"`
	Scale float64 `yaml:"scale" json:"scale"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		ServerURL: "http://127.0.0.1:4723",
		Platform:  "android",
		Screenshot: ScreenshotConfig{
			Dir:   os.TempDir(),
			Scale: 0.5,
		},
		LogLevel: "info",
	}
}

// Load reads the config file at path over the defaults. An empty path means
// no file, which yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url must not be empty")
	}
	switch c.Platform {
	case "android", "ios":
	default:
		return fmt.Errorf("platform must be android or ios, got %q", c.Platform)
	}
	if c.Screenshot.Scale <= 0 || c.Screenshot.Scale > 1 {
		return fmt.Errorf("screenshot scale must be greater than 0 and at most 1, got %g", c.Screenshot.Scale)
	}
	return nil
}

// SessionCapabilities returns the capabilities to open a session with:
// the configured set when present, otherwise the platform defaults.
func (c Config) SessionCapabilities() map[string]interface{} {
	if len(c.Capabilities) > 0 {
		return c.Capabilities
	}
	return DefaultCapabilities(c.Platform)
}

// DefaultCapabilities returns the standard automation capabilities for a
// platform.
func DefaultCapabilities(platform string) map[string]interface{} {
	switch platform {
	case "ios":
		return map[string]interface{}{
			"platformName":          "iOS",
			"appium:automationName": "XCUITest",
		}
	default:
		return map[string]interface{}{
			"platformName":          "Android",
			"appium:automationName": "UiAutomator2",
		}
	}
}
