package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	Storage    Storage `yaml:"storage"`
	Upload     Upload  `yaml:"upload"`

	AdminLogin   string `yaml:"admin_login" env:"ADMIN_LOGIN"`
	AdminPass    string `yaml:"admin_pass" env:"ADMIN_PASS"`
	ErrorLogPath string `yaml:"error_log" env:"ERROR_LOG" env-default:"errors.log"`
	// FrontendDir holds a built dashboard to serve; empty serves the API only.
	FrontendDir string `yaml:"frontend_dir" env:"FRONTEND_DIR"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:3001"`
	Timeout        time.Duration `yaml:"timeout" env-default:"3m"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env-default:"http://localhost:3000,http://localhost:5173"`
}

type Storage struct {
	// Driver is "mysql" or "sqlite".
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"mysql"`
	// Path is the sqlite database file, ":memory:" for an ephemeral store.
	Path       string `yaml:"path" env:"DB_PATH" env-default:"./data/demand_planning.db"`
	DBUser     string `yaml:"db_user" env:"DB_USER"`
	DBPassword string `yaml:"db_password" env:"DB_PASSWORD"`
	DBHost     string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort     int    `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	DBName     string `yaml:"db_name" env:"DB_NAME" env-default:"demand_planning"`
	ParseTime  bool   `yaml:"parse_time" env-default:"true"`
}

type Upload struct {
	MaxFiles     int   `yaml:"max_files" env-default:"10"`
	MaxFileSize  int64 `yaml:"max_file_size" env-default:"52428800"`
	ParseWorkers int   `yaml:"parse_workers" env-default:"4"`
}

// Load reads the YAML config at path, with environment variables (and a
// .env file, when present) taking precedence.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	// .env is optional
	_ = godotenv.Load()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: config file %s: %w", op, path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "mysql":
		if c.Storage.DBUser == "" {
			return fmt.Errorf("storage.db_user is required for mysql")
		}
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for sqlite")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Upload.MaxFiles <= 0 {
		return fmt.Errorf("upload.max_files must be positive")
	}
	if c.Upload.ParseWorkers <= 0 {
		c.Upload.ParseWorkers = 1
	}

	return nil
}

// MySQLDSN builds the go-sql-driver DSN from the storage section.
func (s Storage) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=%v",
		s.DBUser,
		s.DBPassword,
		s.DBHost,
		s.DBPort,
		s.DBName,
		s.ParseTime,
	)
}
