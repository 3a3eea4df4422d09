package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Supported transport compression codecs.
const (
	CompressionNone = "none"
	CompressionLZ4  = "lz4"
)

// Driver version.
const DriverVersion = "0.9.0"

type Config struct {
	Host     string
	Port     int
	Protocol string // http or https
	Username string
	Password string
	Database string

	// Compression selects the codec the server is asked to apply to the
	// result stream body.
	Compression string

	// InitialScratchBytes is the starting capacity of the working buffer
	// handed to the row decoder. It grows on demand and never shrinks.
	InitialScratchBytes int

	// MaxChunkBytes caps the size of a single chunk read from the response
	// body.
	MaxChunkBytes int

	QueryTimeout time.Duration

	// Request retry tuning, applied before the response body is consumed.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	UserAgentEntry string
	DriverName     string
	DriverVersion  string
}

func WithDefaults() *Config {
	return &Config{
		Port:                8123,
		Protocol:            "http",
		Database:            "default",
		Compression:         CompressionNone,
		InitialScratchBytes: 1024,
		MaxChunkBytes:       64 * 1024,
		RetryMax:            4,
		RetryWaitMin:        1 * time.Second,
		RetryWaitMax:        30 * time.Second,
		DriverName:          "gorowstream",
		DriverVersion:       DriverVersion,
	}
}

// ParseDSN builds a Config from a DSN of the form
//
//	http[s]://[user[:password]@]host[:port][/database][?param=value]
//
// Recognized params: compress (none|lz4), query_timeout (seconds),
// max_retries, user_agent_entry.
func ParseDSN(dsn string) (*Config, error) {
	parsedURL, err := url.Parse(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "invalid DSN")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.Errorf("invalid DSN: unsupported scheme %q", parsedURL.Scheme)
	}
	if parsedURL.Hostname() == "" {
		return nil, errors.New("invalid DSN: missing host")
	}

	cfg := WithDefaults()
	cfg.Protocol = parsedURL.Scheme
	cfg.Host = parsedURL.Hostname()
	if cfg.Protocol == "https" {
		cfg.Port = 8443
	}

	if p := parsedURL.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.New("invalid DSN: invalid DSN port")
		}
		cfg.Port = port
	}

	if parsedURL.User != nil {
		cfg.Username = parsedURL.User.Username()
		if pass, ok := parsedURL.User.Password(); ok {
			cfg.Password = pass
		}
	}

	if db := strings.Trim(parsedURL.Path, "/"); db != "" {
		cfg.Database = db
	}

	params := parsedURL.Query()
	if v := params.Get("compress"); v != "" {
		switch v {
		case CompressionNone, CompressionLZ4:
			cfg.Compression = v
		default:
			return nil, errors.Errorf("invalid DSN: unsupported compression %q", v)
		}
	}
	if v := params.Get("query_timeout"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid DSN: query_timeout param is not an integer")
		}
		cfg.QueryTimeout = time.Duration(seconds) * time.Second
	}
	if v := params.Get("max_retries"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid DSN: max_retries param is not an integer")
		}
		cfg.RetryMax = n
	}
	if v := params.Get("user_agent_entry"); v != "" {
		cfg.UserAgentEntry = v
	}

	return cfg, nil
}

// LoadEnv builds a Config from environment variables, loading a .env file
// first when one is present in the working directory. Recognized variables:
// ROWSTREAM_DSN (takes precedence), ROWSTREAM_HOST, ROWSTREAM_PORT,
// ROWSTREAM_USER, ROWSTREAM_PASSWORD, ROWSTREAM_DATABASE.
func LoadEnv(getenv func(string) string) (*Config, error) {
	// missing .env file is fine, real environment still applies
	_ = godotenv.Load()

	if dsn := getenv("ROWSTREAM_DSN"); dsn != "" {
		return ParseDSN(dsn)
	}

	host := getenv("ROWSTREAM_HOST")
	if host == "" {
		return nil, errors.New("invalid environment: ROWSTREAM_DSN or ROWSTREAM_HOST must be set")
	}

	cfg := WithDefaults()
	cfg.Host = host
	if p := getenv("ROWSTREAM_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.New("invalid environment: ROWSTREAM_PORT is not an integer")
		}
		cfg.Port = port
	}
	cfg.Username = getenv("ROWSTREAM_USER")
	cfg.Password = getenv("ROWSTREAM_PASSWORD")
	if db := getenv("ROWSTREAM_DATABASE"); db != "" {
		cfg.Database = db
	}

	return cfg, nil
}

// ToEndpointURL returns the URL queries are posted to. Credentials travel in
// headers, not in the URL.
func (c *Config) ToEndpointURL() string {
	return fmt.Sprintf("%s://%s:%d/", c.Protocol, c.Host, c.Port)
}

func (c *Config) UserAgent() string {
	ua := c.DriverName + "/" + c.DriverVersion
	if c.UserAgentEntry != "" {
		ua = ua + " (" + c.UserAgentEntry + ")"
	}
	return ua
}

func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}

	cp := *c
	return &cp
}
