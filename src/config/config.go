package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Log             LogConfig            `mapstructure:"log"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Worker          WorkerConfig         `mapstructure:"worker"`
}

type ServiceType string

const (
	API    ServiceType = "API"
	WORKER ServiceType = "WORKER"
)

type ServiceConfig struct {
	Type ServiceType `mapstructure:"type"`
	Port string      `mapstructure:"port"`
	// JWTSecret enables HS256 bearer authentication on /api routes when set.
	JWTSecret      string   `mapstructure:"jwtSecret"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// SQLDriver selects the holdings store.
type SQLDriver string

const (
	Postgres SQLDriver = "postgres"
	Memory   SQLDriver = "memory"
)

type SQLConfig struct {
	Host             string    `mapstructure:"host"`
	Port             string    `mapstructure:"port"`
	Username         string    `mapstructure:"username"`
	Password         string    `mapstructure:"password"`
	Driver           SQLDriver `mapstructure:"driver"`
	Database         string    `mapstructure:"database"`
	ConnectionString string    `mapstructure:"connection_string"`
	MaxConns         int32     `mapstructure:"maxConns"`
	// PasswordSecretID names an AWS Secrets Manager secret holding the password.
	PasswordSecretID string `mapstructure:"passwordSecretId"`
	AWSRegion        string `mapstructure:"awsRegion"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	TLS      bool   `mapstructure:"tls"`
}

type ExternalClientConfig struct {
	Quotes QuotesConfig `mapstructure:"quotes"`
}

type QuotesConfig struct {
	BaseURL         string `mapstructure:"baseUrl"`
	TimeoutSeconds  int    `mapstructure:"timeoutSeconds"`
	CacheTTLSeconds int    `mapstructure:"cacheTtlSeconds"`
}

func (c QuotesConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c QuotesConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

type WorkerConfig struct {
	WarmQuotesCron string `mapstructure:"warmQuotesCron"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.type", string(API))
	v.SetDefault("service.port", "8000")
	v.SetDefault("log.level", "info")
	v.SetDefault("databases.sql.driver", string(Memory))
	v.SetDefault("databases.sql.maxConns", 5)
	v.SetDefault("externalClients.quotes.baseUrl", "https://query1.finance.yahoo.com")
	v.SetDefault("externalClients.quotes.timeoutSeconds", 5)
	v.SetDefault("externalClients.quotes.cacheTtlSeconds", 30)
	v.SetDefault("worker.warmQuotesCron", "*/5 * * * *")
}

// LoadConfig reads appsettings.yaml from path, or appsettings.<env>.yaml when
// env is set. STOCKBOT_* environment variables override file values, with
// dots replaced by underscores (STOCKBOT_DATABASES_SQL_HOST).
func LoadConfig(path string, env string) (*Config, error) {
	var cfg Config

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	if env != "" {
		v.SetConfigName("appsettings." + env)
	} else {
		v.SetConfigName("appsettings")
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix("stockbot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
