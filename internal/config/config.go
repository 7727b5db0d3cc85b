package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Env             string `yaml:"env"`
		ShutdownTimeout int    `yaml:"shutdown_timeout"` // секунды
	} `yaml:"server"`

	Database struct {
		Driver       string `yaml:"driver"` // postgres, mysql, memory
		DSN          string `yaml:"url"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		AutoMigrate  bool   `yaml:"auto_migrate"`
	} `yaml:"database"`

	Redis struct {
		Addr          string `yaml:"addr"` // пусто - без кэша и realtime
		Password      string `yaml:"password"`
		DB            int    `yaml:"db"`
		ChannelPrefix string `yaml:"channel_prefix"`
	} `yaml:"redis"`

	Cache struct {
		Prefix string `yaml:"prefix"`
		TTL    int    `yaml:"ttl"` // секунды
	} `yaml:"cache"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // минуты
	} `yaml:"jwt"`

	Notify struct {
		Workers         int  `yaml:"workers"`
		QueueSize       int  `yaml:"queue_size"`
		EmailEnabled    bool `yaml:"email_enabled"`
		RealtimeEnabled bool `yaml:"realtime_enabled"`
	} `yaml:"notify"`

	Workers struct {
		JobExpirySpec string `yaml:"job_expiry_spec"`
	} `yaml:"workers"`

	Auth struct {
		AutoVerify bool `yaml:"auto_verify"`
	} `yaml:"auth"`

	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeout) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWT.TTL) * time.Minute
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

var AppConfig *Config

// Load читает YAML по пути path. Пустой path - только окружение и значения по умолчанию.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	// При заданном DATABASE_URL файл не обязателен (режим теста / контейнера)
	if _, err := os.Stat(path); err != nil && os.Getenv("DATABASE_URL") != "" {
		log.Println("Загрузка конфигурации из переменных окружения")
		path = ""
	}

	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SERVER_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("FIRST_ADMIN_EMAIL"); v != "" {
		cfg.FirstAdminEmail = v
	}
	if v := os.Getenv("FIRST_ADMIN_PASSWORD"); v != "" {
		cfg.FirstAdminPassword = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 15
	}

	if cfg.Database.Driver == "" {
		if cfg.Database.DSN == "" {
			cfg.Database.Driver = "memory"
		} else {
			cfg.Database.Driver = "postgres"
		}
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 20
	}

	if cfg.Redis.ChannelPrefix == "" {
		cfg.Redis.ChannelPrefix = "t2i"
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "t2i:cache"
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 300
	}

	if cfg.JWT.TTL <= 0 {
		cfg.JWT.TTL = 60
	}

	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}

	if cfg.Notify.Workers <= 0 {
		cfg.Notify.Workers = 4
	}
	if cfg.Notify.QueueSize <= 0 {
		cfg.Notify.QueueSize = 256
	}

	if cfg.Workers.JobExpirySpec == "" {
		cfg.Workers.JobExpirySpec = "@every 10m"
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.url is required for driver %s", c.Database.Driver)
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return fmt.Errorf("jwt.secret is required in production")
		}
		c.JWT.Secret = "dev-secret-change-me"
	}
	return nil
}
