package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	tracerr "github.com/xplshn/tracerr2"
)

// Config holds all configuration for the web server. Values are resolved in
// layers: built-in defaults, then the YAML config file, then WEBSERVER_*
// environment variables, then command-line flags (applied by the CLI layer).
type Config struct {
	Host        string            `yaml:"host"`
	Port        int               `yaml:"port"`
	WebDir      string            `yaml:"webdir"`
	HTTPS       bool              `yaml:"https"`
	CertFile    string            `yaml:"cert"`
	LogLevel    string            `yaml:"log_level"`
	LogFormat   string            `yaml:"log_format"`
	LogFile     string            `yaml:"log_file"`
	LogSize     string            `yaml:"log_size"`
	LogCount    int               `yaml:"log_count"`
	PidFile     string            `yaml:"pid_file"`
	IndexFiles  []string          `yaml:"index_files"`
	ExecTimeout time.Duration     `yaml:"exec_timeout"`
	Extra       map[string]string `yaml:"extra"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Host:        "localhost",
		Port:        8080,
		WebDir:      ".",
		HTTPS:       false,
		CertFile:    "",
		LogLevel:    "info",
		LogFormat:   "text",
		LogFile:     "", // stdout
		LogSize:     "10m",
		LogCount:    4,
		PidFile:     "",
		IndexFiles:  []string{"index.html"},
		ExecTimeout: 0, // no limit
		Extra:       map[string]string{},
	}
}

// Load resolves a Config from defaults, an optional YAML file and environment
// variables. An empty path falls back to the WEBSERVER_CONFIG_FILE variable;
// if that is empty too, no file is read.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("WEBSERVER_CONFIG_FILE")
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	loadEnv(cfg)
	return cfg, nil
}

// LoadTest resolves a Config from defaults and environment variables only,
// without touching the flag layer. Intended for tests.
func LoadTest() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("WEBSERVER_CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	loadEnv(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return tracerr.Wrapf(err, "error reading config file %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return tracerr.Wrapf(err, "error parsing config file %s", path)
	}
	return nil
}

// loadEnv applies WEBSERVER_* environment overrides on top of cfg.
func loadEnv(cfg *Config) {
	if host := os.Getenv("WEBSERVER_HOST"); host != "" {
		cfg.Host = host
	}
	if portStr := os.Getenv("WEBSERVER_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Port = port
		}
	}
	if dir := os.Getenv("WEBSERVER_WEBDIR"); dir != "" {
		cfg.WebDir = dir
	}
	if level := os.Getenv("WEBSERVER_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
}

var sizePattern = regexp.MustCompile(`^(\d+)(\.\d+)?([kmg])?$`)

// ParseSize converts a size specification such as "1048576", "1024k", "10m"
// or "1.3g" into a byte count.
func ParseSize(val string) (int64, error) {
	m := sizePattern.FindStringSubmatch(strings.ToLower(val))
	if m == nil {
		return 0, fmt.Errorf("invalid size %q, expected something like \"10m\" or \"1.3g\"", val)
	}
	size, err := strconv.ParseFloat(m[1]+m[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %v", val, err)
	}
	switch m[3] {
	case "k":
		size *= 1 << 10
	case "m":
		size *= 1 << 20
	case "g":
		size *= 1 << 30
	}
	return int64(size), nil
}

// LogSizeBytes returns the rotation threshold in bytes. Call Validate first;
// an unparseable LogSize reports zero here.
func (c *Config) LogSizeBytes() int64 {
	n, err := ParseSize(c.LogSize)
	if err != nil {
		return 0
	}
	return n
}

// Validate checks the resolved configuration and normalizes WebDir and
// CertFile to absolute paths.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return tracerr.New(fmt.Sprintf("port %d out of range [1..65535]", c.Port))
	}

	dir, err := filepath.Abs(c.WebDir)
	if err != nil {
		return tracerr.Wrapf(err, "cannot resolve web directory %s", c.WebDir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return tracerr.Wrapf(err, "web directory %s does not exist", dir)
	}
	if !info.IsDir() {
		return tracerr.New(fmt.Sprintf("web directory %s is not a directory", dir))
	}
	c.WebDir = dir

	if c.HTTPS {
		if c.CertFile == "" {
			return tracerr.New("https requires a certificate file (--cert)")
		}
		cert, err := filepath.Abs(c.CertFile)
		if err != nil {
			return tracerr.Wrapf(err, "cannot resolve certificate file %s", c.CertFile)
		}
		info, err := os.Stat(cert)
		if err != nil {
			return tracerr.Wrapf(err, "certificate file %s does not exist", cert)
		}
		if info.IsDir() {
			return tracerr.New(fmt.Sprintf("certificate file %s is not a file", cert))
		}
		c.CertFile = cert
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return tracerr.New(fmt.Sprintf("unknown log level %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return tracerr.New(fmt.Sprintf("unknown log format %q", c.LogFormat))
	}
	if _, err := ParseSize(c.LogSize); err != nil {
		return tracerr.Wrapf(err, "invalid log size")
	}
	if c.LogCount < 0 {
		return tracerr.New("log count must not be negative")
	}
	if len(c.IndexFiles) == 0 {
		c.IndexFiles = []string{"index.html"}
	}
	if c.ExecTimeout < 0 {
		return tracerr.New("exec timeout must not be negative")
	}
	return nil
}

// Addr returns the host:port pair the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URLPrefix returns the protocol, host and port of the served site, for
// example "https://localhost:8443".
func (c *Config) URLPrefix() string {
	scheme := "http"
	if c.HTTPS {
		scheme = "https"
	}
	return scheme + "://" + c.Addr()
}

// Protocol reports "HTTPS" or "HTTP" depending on the TLS setting.
func (c *Config) Protocol() string {
	if c.HTTPS {
		return "HTTPS"
	}
	return "HTTP"
}

// Entry is one named configuration value for display on diagnostic pages.
type Entry struct {
	Name  string
	Value string
}

// Entries returns every option with its resolved value, sorted
// case-insensitively by name.
func (c *Config) Entries() []Entry {
	extra := make([]string, 0, len(c.Extra))
	for k, v := range c.Extra {
		extra = append(extra, k+"="+v)
	}
	sort.Strings(extra)

	entries := []Entry{
		{"cert", c.CertFile},
		{"exec-timeout", c.ExecTimeout.String()},
		{"extra", strings.Join(extra, " ")},
		{"host", c.Host},
		{"https", strconv.FormatBool(c.HTTPS)},
		{"index-files", strings.Join(c.IndexFiles, " ")},
		{"log-count", strconv.Itoa(c.LogCount)},
		{"log-file", c.LogFile},
		{"log-format", c.LogFormat},
		{"log-level", c.LogLevel},
		{"log-size", c.LogSize},
		{"pid-file", c.PidFile},
		{"port", strconv.Itoa(c.Port)},
		{"webdir", c.WebDir},
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries
}
