package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Upload   UploadConfig   `yaml:"upload" envconfig:"UPLOAD"`
	AI       AIConfig       `yaml:"ai" envconfig:"AI"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	// Report generation and AI analysis can take noticeably longer than
	// plain data requests, so they get their own timeout.
	AnalysisTimeout time.Duration `yaml:"analysis_timeout" envconfig:"ANALYSIS_TIMEOUT" default:"5m"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	UploadsDir    string `yaml:"uploads_dir" envconfig:"UPLOADS_DIR" default:"uploads"`
	ReportsDir    string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	// FontPath points at a unicode ttf used for pdf reports. When empty the
	// built-in latin core fonts are used.
	FontPath string `yaml:"font_path" envconfig:"FONT_PATH"`
}

// UploadConfig contains limits applied to uploaded files
type UploadConfig struct {
	MaxFileSize        int64    `yaml:"max_file_size" envconfig:"MAX_FILE_SIZE" default:"209715200"`
	LargeFileThreshold int64    `yaml:"large_file_threshold" envconfig:"LARGE_FILE_THRESHOLD" default:"10485760"`
	LargeFileRowLimit  int      `yaml:"large_file_row_limit" envconfig:"LARGE_FILE_ROW_LIMIT" default:"10000"`
	PreviewRows        int      `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" default:"100"`
	AllowedExtensions  []string `yaml:"allowed_extensions" envconfig:"ALLOWED_EXTENSIONS" default:"xlsx,xls,csv,pdf"`
}

// AIConfig contains configuration for the external analysis providers
type AIConfig struct {
	RequestTimeout time.Duration  `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"120s"`
	Temperature    float64        `yaml:"temperature" envconfig:"TEMPERATURE" default:"0.3"`
	MaxTokens      int            `yaml:"max_tokens" envconfig:"MAX_TOKENS" default:"2000"`
	Yandex         YandexConfig   `yaml:"yandex" envconfig:"YANDEX"`
	GigaChat       GigaChatConfig `yaml:"gigachat" envconfig:"GIGACHAT"`
}

// YandexConfig contains YandexGPT credentials and endpoints
type YandexConfig struct {
	APIKey        string        `yaml:"api_key" envconfig:"API_KEY"`
	FolderID      string        `yaml:"folder_id" envconfig:"FOLDER_ID"`
	Model         string        `yaml:"model" envconfig:"MODEL" default:"yandexgpt-lite"`
	Endpoint      string        `yaml:"endpoint" envconfig:"ENDPOINT" default:"https://llm.api.cloud.yandex.net/foundationModels/v1/completionAsync"`
	OperationsURL string        `yaml:"operations_url" envconfig:"OPERATIONS_URL" default:"https://operation.api.cloud.yandex.net/operations"`
	PollInterval  time.Duration `yaml:"poll_interval" envconfig:"POLL_INTERVAL" default:"2s"`
}

// GigaChatConfig contains GigaChat credentials and endpoints
type GigaChatConfig struct {
	AuthKey  string `yaml:"auth_key" envconfig:"AUTH_KEY"`
	Scope    string `yaml:"scope" envconfig:"SCOPE" default:"GIGACHAT_API_PERS"`
	OAuthURL string `yaml:"oauth_url" envconfig:"OAUTH_URL" default:"https://ngw.devices.sberbank.ru:9443/api/v2/oauth"`
	BaseURL  string `yaml:"base_url" envconfig:"BASE_URL" default:"https://gigachat.devices.sberbank.ru/api/v1"`
	Model    string `yaml:"model" envconfig:"MODEL" default:"GigaChat"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("DATASIGHT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	// Resolve relative paths against the executable directory
	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.ReadTimeout == 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if envConfig.Upload.MaxFileSize == 0 {
		envConfig.Upload.MaxFileSize = fileConfig.Upload.MaxFileSize
	}
	if envConfig.AI.Yandex.APIKey == "" {
		envConfig.AI.Yandex = fileConfig.AI.Yandex
	}
	if envConfig.AI.GigaChat.AuthKey == "" {
		envConfig.AI.GigaChat = fileConfig.AI.GigaChat
	}

	return envConfig
}

// resolvePaths sets up the executable directory and resolves relative paths
func (c *Config) resolvePaths() error {
	if c.Paths.ExecutableDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to locate executable: %w", err)
		}
		c.Paths.ExecutableDir = filepath.Dir(exe)
	}

	c.Paths.UploadsDir = c.resolveDir(c.Paths.UploadsDir)
	c.Paths.ReportsDir = c.resolveDir(c.Paths.ReportsDir)
	c.Paths.LogsDir = c.resolveDir(c.Paths.LogsDir)
	if c.Paths.FontPath != "" {
		c.Paths.FontPath = c.resolveDir(c.Paths.FontPath)
	}

	if !filepath.IsAbs(c.Logging.FilePath) {
		c.Logging.FilePath = filepath.Join(c.Paths.LogsDir, filepath.Base(c.Logging.FilePath))
	}

	return nil
}

func (c *Config) resolveDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.Paths.ExecutableDir, dir)
}

// EnsureDirectories creates all required directories
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.UploadsDir, c.Paths.ReportsDir, c.Paths.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetUploadsDir returns the resolved uploads directory path
func (c *Config) GetUploadsDir() string {
	return c.Paths.UploadsDir
}

// GetReportsDir returns the resolved reports directory path
func (c *Config) GetReportsDir() string {
	return c.Paths.ReportsDir
}

// GetLogsDir returns the resolved logs directory path
func (c *Config) GetLogsDir() string {
	return c.Paths.LogsDir
}

// AllowedExtension reports whether ext (without dot, case-insensitive)
// is an accepted upload format.
func (c *Config) AllowedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, allowed := range c.Upload.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload max file size must be positive")
	}

	if c.Upload.LargeFileRowLimit <= 0 {
		return fmt.Errorf("large file row limit must be positive")
	}

	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one allowed upload extension must be specified")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "stdout" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			AnalysisTimeout: 5 * time.Minute,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   25,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			UploadsDir: "uploads",
			ReportsDir: "reports",
			LogsDir:    "logs",
		},
		Upload: UploadConfig{
			MaxFileSize:        200 << 20,
			LargeFileThreshold: 10 << 20,
			LargeFileRowLimit:  10000,
			PreviewRows:        100,
			AllowedExtensions:  []string{"xlsx", "xls", "csv", "pdf"},
		},
		AI: AIConfig{
			RequestTimeout: 120 * time.Second,
			Temperature:    0.3,
			MaxTokens:      2000,
			Yandex: YandexConfig{
				Model:         "yandexgpt-lite",
				Endpoint:      "https://llm.api.cloud.yandex.net/foundationModels/v1/completionAsync",
				OperationsURL: "https://operation.api.cloud.yandex.net/operations",
				PollInterval:  2 * time.Second,
			},
			GigaChat: GigaChatConfig{
				Scope:    "GIGACHAT_API_PERS",
				OAuthURL: "https://ngw.devices.sberbank.ru:9443/api/v2/oauth",
				BaseURL:  "https://gigachat.devices.sberbank.ru/api/v1",
				Model:    "GigaChat",
			},
		},
	}
}

// FileExists reports whether the given path exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
