package config

import (
	"time"

	"finextract/pkg/contracts"
)

// Application constants
const (
	AppName    = "finextract"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable, e.g. FINX_SERVER_PORT.
	EnvPrefix = "FINX"
	// ConfigFileEnv names the variable that points at a YAML config file.
	ConfigFileEnv = "FINX_CONFIG_FILE"

	// Server defaults
	DefaultPort            = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 60 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20

	// Rate limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Extraction
	DefaultScanRows    = 30
	DefaultWorkers     = 4
	DefaultMaxFileSize = 50 << 20
	DefaultMaxFiles    = 32
	DefaultCSVEncoding = "auto"

	// Logging
	DefaultLogLevel = "info"
	DefaultLogFile  = "logs/finextract.log"
)

// Accepted values for enumerated settings.
var (
	LogLevels       = []string{"debug", "info", "warn", "warning", "error"}
	LogFormats      = []string{"json", "text"}
	LogOutputs      = []string{"console", "file", "both"}
	CSVEncodings    = []string{"auto", "utf-8", "gb18030"}
	TraceExporters  = []string{"stdout", "none"}
	MetricExporters = []string{"prometheus", "none"}
)
