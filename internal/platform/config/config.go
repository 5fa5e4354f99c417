// Package config loads the meme generator configuration with koanf:
// defaults, then configs/base.yaml, then configs/<profile>.yaml, then APP_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	DefaultMemeWidth    = 500
	DefaultMemeFontSize = 20
	DefaultMemeMargin   = 10

	DefaultDownloadMaxBytes = 10 << 20

	DefaultClientRetryMaxAttempts   = 3
	DefaultClientCircuitMaxFailures = 5
)

// PDF text extractors selectable through ingest.pdf.extractor.
const (
	PDFExtractorNative    = "native"
	PDFExtractorPdfToText = "pdftotext"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Quotes    QuotesConfig    `koanf:"quotes"`
	Images    ImagesConfig    `koanf:"images"    validate:"required"`
	Meme      MemeConfig      `koanf:"meme"      validate:"required"`
	Ingest    IngestConfig    `koanf:"ingest"    validate:"required"`
	Download  DownloadConfig  `koanf:"download"  validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig contains settings for the HTTP client that downloads remote images.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// QuotesConfig lists the quote files loaded at startup, in load order.
type QuotesConfig struct {
	Sources []string `koanf:"sources" validate:"dive,required,quotefile"`
}

// ImagesConfig describes the local photograph catalog.
type ImagesConfig struct {
	Dir        string   `koanf:"dir"        validate:"required"`
	Extensions []string `koanf:"extensions" validate:"required,min=1,dive,startswith=."`
}

// MemeConfig contains compositor settings.
type MemeConfig struct {
	OutputDir string  `koanf:"output_dir" validate:"required"`
	FileName  string  `koanf:"file_name"  validate:"required,endswith=.png"`
	Width     int     `koanf:"width"      validate:"required,min=1,max=8192"`
	FontPath  string  `koanf:"font_path"`
	FontSize  float64 `koanf:"font_size"  validate:"required,gt=0,max=512"`
	Margin    int     `koanf:"margin"     validate:"min=0"`
}

// IngestConfig contains quote ingestion settings.
type IngestConfig struct {
	PDF         PDFConfig         `koanf:"pdf"         validate:"required"`
	Diagnostics DiagnosticsConfig `koanf:"diagnostics"`
}

// PDFConfig selects the PDF text extractor.
type PDFConfig struct {
	Extractor     string `koanf:"extractor"      validate:"required,oneof=native pdftotext"`
	PdfToTextPath string `koanf:"pdftotext_path"`
}

// DiagnosticsConfig controls where ingestion failures are recorded.
// An empty Path sends them to the main logger only.
type DiagnosticsConfig struct {
	Path string `koanf:"path"`
}

// DownloadConfig limits remote image downloads.
type DownloadConfig struct {
	MaxBytes int64 `koanf:"max_bytes" validate:"required,min=1"`
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "meme-generator",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    100,
		"log.file.max_backups": 3,
		"log.file.max_age":     28,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "meme-generator",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           "30s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  2.0,
		"client.retry.jitter_factor":               0.25,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   3,
		"client.transport.max_idle_conns":          100,
		"client.transport.max_idle_conns_per_host": 10,
		"client.transport.idle_conn_timeout":       "90s",

		"quotes.sources": []string{
			"./_data/DogQuotes/DogQuotesTXT.txt",
			"./_data/DogQuotes/DogQuotesDOCX.docx",
			"./_data/DogQuotes/DogQuotesPDF.pdf",
			"./_data/DogQuotes/DogQuotesCSV.csv",
		},

		"images.dir":        "./_data/photos/dog",
		"images.extensions": []string{".jpg", ".jpeg", ".png"},

		"meme.output_dir": "./static",
		"meme.file_name":  "meme.png",
		"meme.width":      DefaultMemeWidth,
		"meme.font_path":  "arial.ttf",
		"meme.font_size":  DefaultMemeFontSize,
		"meme.margin":     DefaultMemeMargin,

		"ingest.pdf.extractor":      PDFExtractorNative,
		"ingest.pdf.pdftotext_path": "pdftotext",
		"ingest.diagnostics.path":   "",

		"download.max_bytes": DefaultDownloadMaxBytes,
	}
}

// Load builds the configuration for profile. Missing files are skipped.
// List values such as quotes.sources are comma-separated in environment
// variables (APP_QUOTES_SOURCES=a.txt,b.csv).
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadOptional(k, "configs/base.yaml"); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		if err := loadOptional(k, "configs/"+profile+".yaml"); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	keys := newEnvKeys(k.Keys())
	if err := k.Load(env.ProviderWithValue("APP_", ".", keys.resolve), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

func loadOptional(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

// listKeys take comma-separated environment values.
var listKeys = map[string]bool{
	"quotes.sources":    true,
	"images.extensions": true,
}

// envKeys maps a flattened variable name (meme_output_dir) to the known
// dotted key (meme.output_dir). Underscores are ambiguous on their own.
type envKeys map[string]string

func newEnvKeys(known []string) envKeys {
	m := make(envKeys, len(known))
	for _, key := range known {
		m[strings.ReplaceAll(key, ".", "_")] = key
	}

	return m
}

func (m envKeys) resolve(name, value string) (string, any) {
	flat := strings.ToLower(strings.TrimPrefix(name, "APP_"))

	key, ok := m[flat]
	if !ok {
		key = strings.ReplaceAll(flat, "_", ".")
	}

	if !listKeys[key] {
		return key, value
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return key, items
}
