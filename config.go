package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/c3mb0/mindset-mcp/pkg/compose"
	"github.com/c3mb0/mindset-mcp/pkg/session"
	"github.com/c3mb0/mindset-mcp/pkg/state"
)

const envPrefix = "MINDSET"

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport  string                      `mapstructure:"transport"`
	Addr       string                      `mapstructure:"addr"`
	BaseURL    string                      `mapstructure:"base_url"`
	Compat     bool                        `mapstructure:"compat"`
	Debug      string                      `mapstructure:"debug"`
	LogFormat  string                      `mapstructure:"log_format"`
	LogLevel   string                      `mapstructure:"log_level"`
	Sanitize   bool                        `mapstructure:"sanitize"`
	MaxLength  int                         `mapstructure:"max_length"`
	ImageMode  string                      `mapstructure:"image_mode"`
	ImageFirst bool                        `mapstructure:"image_first"`
	ImagesDir  string                      `mapstructure:"images_dir"`
	Session    SessionConfig               `mapstructure:"session"`
	Escalation compose.Escalation          `mapstructure:"escalation"`
	Templates  map[string]compose.Template `mapstructure:"templates"`
	Keywords   map[string][]string         `mapstructure:"keywords"`
}

type SessionConfig struct {
	TTL     time.Duration `mapstructure:"ttl"`
	MaxSize int64         `mapstructure:"max_size"`
}

// setDefaults registers every scalar key so environment overrides are seen
// by Unmarshal.
func setDefaults(v *viper.Viper) {
	esc := compose.DefaultEscalation()
	v.SetDefault("transport", transportStdio)
	v.SetDefault("addr", defaultAddr)
	v.SetDefault("base_url", "")
	v.SetDefault("compat", false)
	v.SetDefault("debug", "")
	v.SetDefault("log_format", logFormatText)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("sanitize", true)
	v.SetDefault("max_length", defaultMaxLength)
	v.SetDefault("image_mode", string(compose.ImageItemMode))
	v.SetDefault("image_first", false)
	v.SetDefault("images_dir", "")
	v.SetDefault("session.ttl", defaultSessionTTL)
	v.SetDefault("session.max_size", defaultSessionMaxSize)
	v.SetDefault("escalation.soft_at", esc.SoftAt)
	v.SetDefault("escalation.strong_at", esc.StrongAt)
	v.SetDefault("escalation.soft_cta", esc.SoftCTA)
	v.SetDefault("escalation.strong_cta", esc.StrongCTA)
}

// registerFlags declares the command-line flags and binds them to v.
func registerFlags(fs *pflag.FlagSet, v *viper.Viper) {
	fs.String("config", "", "YAML config file")
	fs.String("transport", transportStdio, "transport: stdio, sse or http")
	fs.String("addr", defaultAddr, "listen address for sse/http transports")
	fs.String("base-url", "", "public base URL advertised by the SSE transport")
	fs.Bool("compat", false, "return tool results as content only, without structured output")
	fs.String("debug", "", "write debug logs to this file")
	fs.String("log-format", logFormatText, "log format: text or json")
	fs.String("log-level", defaultLogLevel, "log level: debug, info, warn, error")
	fs.Bool("sanitize", true, "strip bullets, emojis and punctuation from messages")
	fs.Int("max-length", defaultMaxLength, "cap message length in characters (0 disables)")
	fs.String("image-mode", string(compose.ImageItemMode), "image placement: item, inline or off")
	fs.Bool("image-first", false, "emit the image item before the text")
	fs.String("images-dir", "", "directory holding per-state images")
	fs.Duration("session-ttl", defaultSessionTTL, "idle time before a session counter is forgotten")
	fs.Int64("session-max", defaultSessionMaxSize, "maximum number of tracked sessions")
	fs.Int("soft-at", compose.DefaultSoftAt, "interaction count that adds the soft call-to-action (0 disables)")
	fs.Int("strong-at", compose.DefaultStrongAt, "interaction count that adds the strong call-to-action (0 disables)")

	bindings := map[string]string{
		"transport":            "transport",
		"addr":                 "addr",
		"base_url":             "base-url",
		"compat":               "compat",
		"debug":                "debug",
		"log_format":           "log-format",
		"log_level":            "log-level",
		"sanitize":             "sanitize",
		"max_length":           "max-length",
		"image_mode":           "image-mode",
		"image_first":          "image-first",
		"images_dir":           "images-dir",
		"session.ttl":          "session-ttl",
		"session.max_size":     "session-max",
		"escalation.soft_at":   "soft-at",
		"escalation.strong_at": "strong-at",
	}
	for key, flag := range bindings {
		_ = v.BindPFlag(key, fs.Lookup(flag))
	}
}

// newViper returns a viper instance with defaults and MINDSET_* environment
// lookups, e.g. MINDSET_SESSION_TTL for session.ttl.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the optional config file and decodes v into a validated
// ServerConfig.
func LoadConfig(v *viper.Viper, file string) (*ServerConfig, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}
	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	cfg.ImageMode = strings.ToLower(strings.TrimSpace(cfg.ImageMode))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration validity
func (c *ServerConfig) Validate() error {
	switch c.Transport {
	case transportStdio:
	case transportSSE, transportHTTP:
		if c.Addr == "" {
			return fmt.Errorf("addr is required for the %s transport", c.Transport)
		}
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}

	if c.LogFormat != logFormatText && c.LogFormat != logFormatJSON {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if _, err := c.slogLevel(); err != nil {
		return err
	}

	if c.Session.TTL < 0 {
		return fmt.Errorf("session ttl must not be negative")
	}
	if c.Session.MaxSize < 0 {
		return fmt.Errorf("session max size must not be negative")
	}

	if err := c.ComposeOptions().Validate(); err != nil {
		return err
	}
	if _, err := c.BuildTemplates(); err != nil {
		return err
	}
	if _, err := c.Tiers(); err != nil {
		return err
	}
	return nil
}

func (c *ServerConfig) slogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return lvl, nil
}

func (c *ServerConfig) ComposeOptions() compose.Options {
	return compose.Options{
		Sanitize:   c.Sanitize,
		MaxLength:  c.MaxLength,
		ImageMode:  compose.ImageMode(c.ImageMode),
		ImageFirst: c.ImageFirst,
		Escalation: c.Escalation,
	}
}

func (c *ServerConfig) SessionStoreConfig() session.Config {
	return session.Config{TTL: c.Session.TTL, MaxSize: c.Session.MaxSize}
}

// BuildTemplates overlays configured templates on the built-in ones.
func (c *ServerConfig) BuildTemplates() (compose.Templates, error) {
	tpls, err := compose.DefaultTemplates().Merge(c.Templates)
	if err != nil {
		return nil, err
	}
	if err := tpls.Validate(); err != nil {
		return nil, err
	}
	return tpls, nil
}

// Tiers returns the keyword table. Configured keyword lists replace a tier's
// keywords; tier priority never changes.
func (c *ServerConfig) Tiers() ([]state.Tier, error) {
	tiers := make([]state.Tier, len(state.DefaultTiers))
	copy(tiers, state.DefaultTiers)
	for name, kws := range c.Keywords {
		st, err := state.Parse(strings.ToLower(name))
		if err != nil {
			return nil, fmt.Errorf("keyword override: %w", err)
		}
		for i := range tiers {
			if tiers[i].State == st {
				tiers[i].Keywords = kws
			}
		}
	}
	return tiers, nil
}
