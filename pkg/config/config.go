// Package config loads dictadmin settings from YAML and DICTADMIN_* variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DICTADMIN_CLIENT_BASE_URL.
const EnvPrefix = "DICTADMIN"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Client   ClientConfig   `mapstructure:"client"`
	Database DatabaseConfig `mapstructure:"database"`
	Console  ConsoleConfig  `mapstructure:"console"`
	Theme    ThemeConfig    `mapstructure:"theme"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	ConsoleAddr   string        `mapstructure:"console_addr" validate:"required"`
	APIAddr       string        `mapstructure:"api_addr" validate:"required"`
	BasePath      string        `mapstructure:"base_path" validate:"required,startswith=/"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" validate:"gt=0"`
	SessionCookie string        `mapstructure:"session_cookie" validate:"required"`
	APIKey        string        `mapstructure:"api_key"`
}

type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver" validate:"oneof=sqlite mysql memory"`
	DSN             string            `mapstructure:"dsn"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port" validate:"min=0,max=65535"`
	Name            string            `mapstructure:"name"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration     `mapstructure:"conn_max_lifetime"`
}

type ConsoleConfig struct {
	PageSize              int           `mapstructure:"page_size" validate:"min=1,max=500"`
	ReportTransportErrors bool          `mapstructure:"report_transport_errors"`
	Title                 string        `mapstructure:"title" validate:"required"`
	Description           string        `mapstructure:"description"`
	Favicon               string        `mapstructure:"favicon"`
	Locales               []string      `mapstructure:"locales" validate:"min=1,dive,required"`
	TimeZone              string        `mapstructure:"time_zone" validate:"timezone"`
	MenuGroup             string        `mapstructure:"menu_group"`
	ChartCacheTTL         time.Duration `mapstructure:"chart_cache_ttl"`
}

type ThemeConfig struct {
	Name            string                       `mapstructure:"name"`
	Variant         string                       `mapstructure:"variant"`
	ChartTheme      string                       `mapstructure:"chart_theme"`
	ChartAssetsHost string                       `mapstructure:"chart_assets_host"`
	AssetsPrefix    string                       `mapstructure:"assets_prefix"`
	Tokens          map[string]string            `mapstructure:"tokens"`
	Assets          map[string]string            `mapstructure:"assets"`
	Variants        map[string]map[string]string `mapstructure:"variants"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

// Location resolves the console time zone, defaulting to UTC.
func (c ConsoleConfig) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("dictadmin")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/dictadmin")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.console_addr", ":8080")
	v.SetDefault("server.api_addr", ":8081")
	v.SetDefault("server.base_path", "/admin")
	v.SetDefault("server.session_ttl", "10m")
	v.SetDefault("server.session_cookie", "dictadmin_session")
	v.SetDefault("server.api_key", "")
	v.SetDefault("client.base_url", "http://localhost:8081")
	v.SetDefault("client.api_key", "")
	v.SetDefault("client.timeout", "10s")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "dictadmin.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.name", "dictadmin")
	v.SetDefault("database.username", "dictadmin")
	v.SetDefault("database.password", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("console.page_size", 50)
	v.SetDefault("console.report_transport_errors", false)
	v.SetDefault("console.title", "Big Data Platform")
	v.SetDefault("console.description", "Admin system")
	v.SetDefault("console.favicon", "/favicon.ico")
	v.SetDefault("console.locales", []string{"en", "zh-CN"})
	v.SetDefault("console.time_zone", "UTC")
	v.SetDefault("console.menu_group", "System")
	v.SetDefault("console.chart_cache_ttl", "5m")
	v.SetDefault("theme.name", "default")
	v.SetDefault("theme.variant", "light")
	v.SetDefault("theme.chart_theme", "westeros")
	v.SetDefault("theme.chart_assets_host", "")
	v.SetDefault("theme.tokens", map[string]string{"primary": "#1677ff", "sider": "#001529"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
