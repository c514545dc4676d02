package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without env or file",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.RequestTimeout)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, 30, cfg.Extraction.ScanRows)
				assert.Equal(t, 4, cfg.Extraction.Workers)
				assert.Equal(t, int64(50<<20), cfg.Extraction.MaxFileSize)
				assert.Equal(t, "auto", cfg.Extraction.CSVEncoding)
				assert.Equal(t, AppName, cfg.Telemetry.ServiceName)
			},
		},
		{
			name: "environment overrides defaults",
			env: map[string]string{
				"FINX_SERVER_PORT":              "9090",
				"FINX_SERVER_READ_TIMEOUT":      "5s",
				"FINX_LOGGING_LEVEL":            "DEBUG",
				"FINX_EXTRACTION_WORKERS":       "8",
				"FINX_EXTRACTION_CSV_ENCODING":  "GB18030",
				"FINX_SECURITY_RATE_LIMIT_RPS":  "7.5",
				"FINX_SECURITY_ALLOWED_ORIGINS": "http://a.example,http://b.example",
				"FINX_TELEMETRY_ENABLE_METRICS": "false",
				"FINX_EXTRACTION_MAX_FILE_SIZE": "1024",
				"FINX_SERVER_SHUTDOWN_TIMEOUT":  "1m",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, time.Minute, cfg.Server.ShutdownTimeout)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 8, cfg.Extraction.Workers)
				assert.Equal(t, "gb18030", cfg.Extraction.CSVEncoding)
				assert.Equal(t, int64(1024), cfg.Extraction.MaxFileSize)
				assert.Equal(t, 7.5, cfg.Security.RateLimit.RPS)
				assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
				assert.False(t, cfg.Telemetry.EnableMetrics)
				// Untouched values keep their defaults.
				assert.Equal(t, 30, cfg.Extraction.ScanRows)
			},
		},
		{
			name: "file overrides defaults and keeps missing keys",
			file: `
server:
  port: 7000
  request_timeout: 2m
extraction:
  scan_rows: 50
  csv_encoding: utf-8
logging:
  output: both
  file_path: ""
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7000, cfg.Server.Port)
				assert.Equal(t, 2*time.Minute, cfg.Server.RequestTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 50, cfg.Extraction.ScanRows)
				assert.Equal(t, 4, cfg.Extraction.Workers)
				assert.Equal(t, "utf-8", cfg.Extraction.CSVEncoding)
				assert.Equal(t, "both", cfg.Logging.Output)
				assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath, "file outputs fall back to the default path")
			},
		},
		{
			name: "environment wins over file",
			env:  map[string]string{"FINX_EXTRACTION_SCAN_ROWS": "12"},
			file: "extraction:\n  scan_rows: 50\n  workers: 2\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 12, cfg.Extraction.ScanRows)
				assert.Equal(t, 2, cfg.Extraction.Workers)
			},
		},
		{
			name:    "malformed file",
			file:    "server: [not, a, map",
			wantErr: "failed to load config from file",
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"FINX_SERVER_PORT": "eighty"},
			wantErr: "failed to load config from env",
		},
		{
			name:    "validation failure",
			env:     map[string]string{"FINX_EXTRACTION_WORKERS": "0"},
			wantErr: "extraction workers must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ConfigFileEnv, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				t.Setenv(ConfigFileEnv, writeConfigFile(t, tt.file))
			}

			cfg, err := Load()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "read timeout"},
		{"write timeout", func(c *Config) { c.Server.WriteTimeout = -time.Second }, "write timeout"},
		{"request timeout", func(c *Config) { c.Server.RequestTimeout = 0 }, "request timeout"},
		{"cors without origins", func(c *Config) { c.Security.AllowedOrigins = nil }, "allowed origin"},
		{"cors disabled without origins", func(c *Config) {
			c.Security.EnableCORS = false
			c.Security.AllowedOrigins = nil
		}, ""},
		{"rate limit burst", func(c *Config) { c.Security.RateLimit.Burst = 0 }, "rate limit"},
		{"rate limit disabled", func(c *Config) {
			c.Security.RateLimit.Enabled = false
			c.Security.RateLimit.RPS = 0
		}, ""},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
		{"log output", func(c *Config) { c.Logging.Output = "syslog" }, "invalid log output"},
		{"scan rows", func(c *Config) { c.Extraction.ScanRows = 0 }, "scan rows"},
		{"max file size", func(c *Config) { c.Extraction.MaxFileSize = 0 }, "max file size"},
		{"max files", func(c *Config) { c.Extraction.MaxFiles = 0 }, "max files"},
		{"csv encoding", func(c *Config) { c.Extraction.CSVEncoding = "latin1" }, "invalid csv encoding"},
		{"trace exporter", func(c *Config) {
			c.Telemetry.EnableTracing = true
			c.Telemetry.TraceExporter = "otlp"
		}, "unsupported trace exporter"},
		{"metric exporter", func(c *Config) { c.Telemetry.MetricExporter = "statsd" }, "unsupported metric exporter"},
		{"sample ratio", func(c *Config) { c.Telemetry.SampleRatio = 1.5 }, "sample ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefault(t *testing.T) {
	a := Default()
	b := Default()
	a.Security.AllowedOrigins[0] = "changed"
	assert.Equal(t, "http://localhost:8080", b.Security.AllowedOrigins[0], "each call returns an independent value")
}

func TestValidate_Exported(t *testing.T) {
	cfg := Default()
	cfg.Extraction.CSVEncoding = "GB18030"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "gb18030", cfg.Extraction.CSVEncoding)

	cfg.Extraction.Workers = -1
	assert.Error(t, cfg.Validate())
}
