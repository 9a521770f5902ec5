package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. FINDASH_SERVER_PORT.
const EnvPrefix = "FINDASH"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DataConfig selects and locates the financial dataset
type DataConfig struct {
	Source        string        `yaml:"source" envconfig:"SOURCE"` // "workbook" or "sheets"
	WorkbookFile  string        `yaml:"workbook_file" envconfig:"WORKBOOK_FILE"`
	Sheet         string        `yaml:"sheet" envconfig:"SHEET"`
	Watch         bool          `yaml:"watch" envconfig:"WATCH"`
	WatchDebounce time.Duration `yaml:"watch_debounce" envconfig:"WATCH_DEBOUNCE"`
	TaxonomyFile  string        `yaml:"taxonomy_file" envconfig:"TAXONOMY_FILE"`
	Sheets        SheetsConfig  `yaml:"sheets" envconfig:"SHEETS"`
}

// SheetsConfig configures the Google Sheets data source
type SheetsConfig struct {
	SpreadsheetID   string        `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	Range           string        `yaml:"range" envconfig:"RANGE"`
	CredentialsFile string        `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	APIKey          string        `yaml:"api_key" envconfig:"API_KEY"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// DashboardConfig holds defaults for the dashboard controls
type DashboardConfig struct {
	DefaultUnit        string  `yaml:"default_unit" envconfig:"DEFAULT_UNIT"`
	TrendLookback      int     `yaml:"trend_lookback" envconfig:"TREND_LOOKBACK"`
	CustomDefaultCount int     `yaml:"custom_default_count" envconfig:"CUSTOM_DEFAULT_COUNT"`
	ShowTrend          bool    `yaml:"show_trend" envconfig:"SHOW_TREND"`
	DivideDefault      float64 `yaml:"divide_default" envconfig:"DIVIDE_DEFAULT"`
}

// ExportConfig controls report generation
type ExportConfig struct {
	ChartWidth  int `yaml:"chart_width" envconfig:"CHART_WIDTH"`
	ChartHeight int `yaml:"chart_height" envconfig:"CHART_HEIGHT"`
}

// TelemetryConfig controls tracing and metrics exporters
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`   // "stdout" or "none"
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"` // "prometheus" or "none"
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
}

// Load builds the configuration from defaults, then the YAML file if one
// is found, then environment variables. Later sources win.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML onto cfg. Keys absent from the file keep
// their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
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

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	switch c.Data.Source {
	case SourceWorkbook:
		if c.Data.WorkbookFile == "" {
			return fmt.Errorf("data.workbook_file is required for the workbook source")
		}
	case SourceSheets:
		if c.Data.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("data.sheets.spreadsheet_id is required for the sheets source")
		}
	default:
		return fmt.Errorf("unknown data source %q", c.Data.Source)
	}

	switch c.Dashboard.DefaultUnit {
	case "billions", "millions":
	default:
		return fmt.Errorf("invalid dashboard default unit %q", c.Dashboard.DefaultUnit)
	}

	if c.Dashboard.TrendLookback < 0 {
		return fmt.Errorf("dashboard trend lookback must not be negative")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
		c.Logging.Format = strings.ToLower(c.Logging.Format)
	default:
		c.Logging.Format = "json"
	}

	switch out := strings.ToLower(c.Logging.Output); out {
	case "stdout", "stderr", "file", "both":
		c.Logging.Output = out
	case "console":
		c.Logging.Output = "stdout"
	default:
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// Data source kinds
const (
	SourceWorkbook = "workbook"
	SourceSheets   = "sheets"
)

// getConfigFilePath returns the path to the config file, or "" for none
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

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

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  20 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   100,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			LogsDir:    "logs",
			ExportsDir: "exports",
		},
		Data: DataConfig{
			Source:        SourceWorkbook,
			WorkbookFile:  "financial_data_us.xlsx",
			WatchDebounce: 500 * time.Millisecond,
			Sheets: SheetsConfig{
				Range:   "A1:Z1000",
				Timeout: 15 * time.Second,
			},
		},
		Dashboard: DashboardConfig{
			DefaultUnit:        "billions",
			TrendLookback:      4,
			CustomDefaultCount: 3,
			ShowTrend:          true,
		},
		Export: ExportConfig{
			ChartWidth:  800,
			ChartHeight: 420,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "findash",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}
