package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/alberto-moreno-sa/notion-blog/internal/mapper"
)

type Config struct {
	NotionToken string `mapstructure:"notion_token"`
	DatabaseID  string `mapstructure:"notion_database_id"`

	TitleProperty     string `mapstructure:"notion_title_property"`
	SlugProperty      string `mapstructure:"notion_slug_property"`
	PublishedProperty string `mapstructure:"notion_published_property"`

	Concurrency int `mapstructure:"fetch_concurrency"`

	SiteTitle    string        `mapstructure:"site_title"`
	OutputDir    string        `mapstructure:"output_dir"`
	TemplatesDir string        `mapstructure:"templates_dir"`
	Revalidate   time.Duration `mapstructure:"revalidate"`
	Addr         string        `mapstructure:"addr"`

	DatabaseURL    string `mapstructure:"database_url"`
	BuildLogSQLite string `mapstructure:"build_log_sqlite"`
	BuildLogKeep   int    `mapstructure:"build_log_keep"`

	TelegramToken  string `mapstructure:"telegram_bot_token"`
	TelegramChatID string `mapstructure:"telegram_chat_id"`
}

var defaults = map[string]any{
	"notion_token":              "",
	"notion_database_id":        "",
	"notion_title_property":     mapper.DefaultProperties.Title,
	"notion_slug_property":      mapper.DefaultProperties.Slug,
	"notion_published_property": mapper.DefaultProperties.Published,
	"fetch_concurrency":         5,
	"site_title":                "Blog",
	"output_dir":                "public",
	"templates_dir":             "",
	"revalidate":                "60s",
	"addr":                      ":3000",
	"database_url":              "",
	"build_log_sqlite":          "",
	"build_log_keep":            20,
	"telegram_bot_token":        "",
	"telegram_chat_id":          "",
}

// Load reads configuration from an optional config file and environment
// variables, environment taking precedence. cfgFile may be empty, in which
// case ./config.yaml is used when present.
//
// The Notion token and database id are not required here: without them the
// CMS calls fail and report why.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Revalidate <= 0 {
		return nil, fmt.Errorf("revalidate must be positive, got %s", cfg.Revalidate)
	}

	return &cfg, nil
}

// Properties returns the database property names posts are read from.
func (c *Config) Properties() mapper.Properties {
	return mapper.Properties{
		Title:     c.TitleProperty,
		Slug:      c.SlugProperty,
		Published: c.PublishedProperty,
	}
}
