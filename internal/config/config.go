package config

import (
	"bytes"
	_ "embed"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
	MySQL      DatabaseConfig   `mapstructure:"mysql"`
	ClickHouse DatabaseConfig   `mapstructure:"clickhouse"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Tracking   TrackingConfig   `mapstructure:"tracking"`
	Channels   ChannelsConfig   `mapstructure:"channels"`
	Telephony  TelephonyConfig  `mapstructure:"telephony"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	Topic          string   `mapstructure:"topic"`
	GroupID        string   `mapstructure:"group_id"`
	MinBytes       int      `mapstructure:"min_bytes"`
	MaxBytes       int      `mapstructure:"max_bytes"`
	CommitInterval int      `mapstructure:"commit_interval_ms"`
}

type DispatcherConfig struct {
	WorkerCount int           `mapstructure:"worker_count"`
	BatchSize   int           `mapstructure:"batch_size"`
	BatchWait   time.Duration `mapstructure:"batch_wait"`
}

type RateLimitConfig struct {
	RPS int `mapstructure:"rps"`
}

// TrackingConfig covers the signed-token service and the public surface.
type TrackingConfig struct {
	Secret        string        `mapstructure:"secret"` // plain or "base64:" prefixed
	PublicBaseURL string        `mapstructure:"public_base_url"`
	TrackingTTL   time.Duration `mapstructure:"tracking_ttl"`
	PortalTTL     time.Duration `mapstructure:"portal_ttl"`
}

// ChannelsConfig selects one driver per message channel.
type ChannelsConfig struct {
	Email    EmailConfig    `mapstructure:"email"`
	SMS      SMSConfig      `mapstructure:"sms"`
	WhatsApp WhatsAppConfig `mapstructure:"whatsapp"`
}

type EmailConfig struct {
	Driver    string `mapstructure:"driver"` // mock | smtp
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	From      string `mapstructure:"from"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

type SMSConfig struct {
	Driver     string `mapstructure:"driver"` // mock | twilio
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	From       string `mapstructure:"from"`
	BaseURL    string `mapstructure:"base_url"` // override for tests
	TimeoutMs  int    `mapstructure:"timeout_ms"`
}

type WhatsAppConfig struct {
	Driver        string `mapstructure:"driver"` // mock | meta
	PhoneNumberID string `mapstructure:"phone_number_id"`
	AccessToken   string `mapstructure:"access_token"`
	BaseURL       string `mapstructure:"base_url"` // override for tests
	TimeoutMs     int    `mapstructure:"timeout_ms"`
}

type TelephonyConfig struct {
	Driver            string `mapstructure:"driver"` // null | twilio
	AccountSID        string `mapstructure:"account_sid"`
	AuthToken         string `mapstructure:"auth_token"`
	APIKeySID         string `mapstructure:"api_key_sid"`
	APIKeySecret      string `mapstructure:"api_key_secret"`
	From              string `mapstructure:"from"`
	VoiceURL          string `mapstructure:"voice_url"`
	StatusCallbackURL string `mapstructure:"status_callback_url"`
	BaseURL           string `mapstructure:"base_url"` // override for tests
	TimeoutMs         int    `mapstructure:"timeout_ms"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (ORGW_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (ORGW_*)
	v.SetEnvPrefix("ORGW")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
