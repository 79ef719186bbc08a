// Package config provides XML-based configuration management for air-gapped deployment.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pid-digitizer/backend/internal/cad"
	"github.com/pid-digitizer/backend/internal/models"
)

// FileName is the configuration file looked up beside the executable.
const FileName = "PIDExporter.config"

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"PIDExporter"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Export defaults and limits
	Export ExportConfig `xml:"Export"`

	// Security configuration
	Security SecurityConfig `xml:"Security"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	ExportsDirectory string `xml:"ExportsDirectory"`
	HistoryDatabase  string `xml:"HistoryDatabase"`
}

// ExportConfig contains export defaults and job limits
type ExportConfig struct {
	DefaultPaperSize       string `xml:"DefaultPaperSize"`
	DefaultScale           string `xml:"DefaultScale"`
	JobTimeoutSeconds      int    `xml:"JobTimeoutSeconds"`
	MaxConcurrentExports   int    `xml:"MaxConcurrentExports"`
	JobRetentionMinutes    int    `xml:"JobRetentionMinutes"`
	CleanupIntervalMinutes int    `xml:"CleanupIntervalMinutes"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	AllowFileDeletion bool   `xml:"AllowFileDeletion"`
	AllowedInputTypes string `xml:"AllowedInputTypes"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	DuckDBThreads        int    `xml:"DuckDBThreads"`
	DuckDBMemoryLimit    string `xml:"DuckDBMemoryLimit"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 120,
			IdleTimeout:  120,
			BodyLimit:    "64M",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			ExportsDirectory: "./data/exports",
			HistoryDatabase:  "./data/history.duckdb",
		},
		Export: ExportConfig{
			DefaultPaperSize:       string(models.PaperA1),
			DefaultScale:           "NTS",
			JobTimeoutSeconds:      60,
			MaxConcurrentExports:   4,
			JobRetentionMinutes:    60,
			CleanupIntervalMinutes: 5,
		},
		Security: SecurityConfig{
			AllowFileDeletion: true,
			AllowedInputTypes: ".json,.yaml,.yml,.msgpack",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			DuckDBThreads:        2,
			DuckDBMemoryLimit:    "256MB",
		},
	}
}

// LoadConfig loads configuration from XML file, writing the defaults there
// on first run.
func LoadConfig(configPath string) (*AppConfig, error) {
	var config *AppConfig

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config = DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		config = DefaultConfig()
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- P&ID Exporter Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}

	if exportDir := os.Getenv("EXPORT_DIR"); exportDir != "" {
		c.Storage.ExportsDirectory = exportDir
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	for _, p := range []*string{
		&c.Storage.DataDirectory,
		&c.Storage.ExportsDirectory,
		&c.Storage.HistoryDatabase,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
}

// Validate rejects settings the service cannot run with.
func (c *AppConfig) Validate() error {
	if _, err := cad.PaperDimensions(models.PaperSize(c.Export.DefaultPaperSize)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: port %d out of range", c.Server.Port)
	}
	if c.Export.CleanupIntervalMinutes <= 0 {
		return fmt.Errorf("invalid config: cleanup interval must be positive")
	}
	if c.Storage.ExportsDirectory == "" {
		return fmt.Errorf("invalid config: exports directory is empty")
	}
	return nil
}

// ExportDefaults returns the options applied to requests that leave them unset.
func (c *AppConfig) ExportDefaults() models.ExportOptions {
	opts := models.DefaultExportOptions()
	opts.PaperSize = models.PaperSize(c.Export.DefaultPaperSize)
	if c.Export.DefaultScale != "" {
		opts.Scale = c.Export.DefaultScale
	}
	return opts
}

// JobTimeout returns the wall-clock limit for one export.
func (c *AppConfig) JobTimeout() time.Duration {
	return time.Duration(c.Export.JobTimeoutSeconds) * time.Second
}

// AllowedInputType reports whether a request file extension is accepted.
func (c *AppConfig) AllowedInputType(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return true
	}
	for _, allowed := range strings.Split(c.Security.AllowedInputTypes, ",") {
		if strings.TrimSpace(strings.ToLower(allowed)) == ext {
			return true
		}
	}
	return false
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.ExportsDirectory,
	}
	if c.Storage.HistoryDatabase != "" {
		dirs = append(dirs, filepath.Dir(c.Storage.HistoryDatabase))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
