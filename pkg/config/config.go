// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package config resolves the proxy's Global Options (spec.md §3/§6): the
// required CLI flags plus the ambient timeout/log knobs the teacher reads
// from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

const (
	envRequestTimeout       = "SPDY2HTTP_REQUEST_TIMEOUT"
	envLogLevel             = "SPDY2HTTP_LOG_LEVEL"
	envGracefulShutdown     = "SPDY2HTTP_GRACEFUL_SHUTDOWN"
	envMaxInFlight          = "SPDY2HTTP_MAX_INFLIGHT_TRANSACTIONS"
	defaultRequestTimeout   = 30 * time.Second
	defaultLogLevel         = "info"
	defaultGracefulShutdown = 2 * time.Second
	defaultMaxInFlight      = 4096
)

// Config captures the Global Options from spec.md §3, plus the ambient
// knobs (log level, timeouts) spec.md doesn't put on the CLI.
type Config struct {
	ListenPort  uint16
	CertFile    string
	KeyFile     string
	Backend     string // host[:port] override, empty if unset
	Verbose     bool   // -v/--verbose
	CurlVerbose bool   // -h/--curl-verbose (origin-client debug logging)
	HTTP10      bool   // -0/--http10
	Transparent bool   // -t/--transparent
	MetricsAddr string // --metrics-addr, empty disables the debug listener
	LogFormat   string // --log-format, "console" or "json"

	RequestTimeout          time.Duration
	LogLevel                string
	GracefulShutdownTimeout time.Duration

	// MaxInFlightTransactions bounds the Engine's transaction table; a
	// SYN_STREAM arriving once the table is at capacity is answered with a
	// synthesized 503 (ResourceError) rather than admitted. Ambient, like
	// the other timeout/level knobs above: spec.md never bounds this.
	MaxInFlightTransactions int
}

// ConfigError reports a missing or invalid CLI option (spec.md §7). It is
// always process-fatal (exit 1 with usage) because it occurs before the
// daemon accepts any connection.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Msg
}

// Parse parses args (excluding argv[0]) into a Config, validating the
// required flags from spec.md §6. It does not call os.Exit; callers decide
// how to report a *ConfigError.
func Parse(args []string) (Config, error) {
	fs := pflag.NewFlagSet("spdy2http", pflag.ContinueOnError)

	port := fs.Uint16P("port", "p", 0, "Listening port.")
	cert := fs.StringP("certificate", "c", "", "Path to a certificate file.")
	key := fs.StringP("certificate-key", "k", "", "Path to a key file for the certificate.")
	backend := fs.StringP("backend-server", "b", "", "If set, the proxy will connect always to it.")
	verbose := fs.BoolP("verbose", "v", false, "Print debug information.")
	curlVerbose := fs.BoolP("curl-verbose", "h", false, "Print debug information for the origin HTTP client.")
	http10 := fs.BoolP("http10", "0", false, "Prefer HTTP/1.0 connections to the next hop.")
	transparent := fs.BoolP("transparent", "t", false, "Fetch a URL based on the Host header and requested path.")
	metricsAddr := fs.String("metrics-addr", "", "Optional address to serve Prometheus metrics on (disabled if empty).")
	logFormat := fs.String("log-format", "console", "Log output format: console or json.")

	if err := fs.Parse(args); err != nil {
		return Config{}, &ConfigError{Msg: err.Error()}
	}

	if *port == 0 {
		return Config{}, &ConfigError{Msg: "-p/--port is required"}
	}
	if *cert == "" {
		return Config{}, &ConfigError{Msg: "-c/--certificate is required"}
	}
	if *key == "" {
		return Config{}, &ConfigError{Msg: "-k/--certificate-key is required"}
	}

	return Config{
		ListenPort:              *port,
		CertFile:                *cert,
		KeyFile:                *key,
		Backend:                 *backend,
		Verbose:                 *verbose,
		CurlVerbose:             *curlVerbose,
		HTTP10:                  *http10,
		Transparent:             *transparent,
		MetricsAddr:             *metricsAddr,
		LogFormat:               strings.ToLower(*logFormat),
		RequestTimeout:          getDuration(envRequestTimeout, defaultRequestTimeout),
		LogLevel:                strings.ToLower(getString(envLogLevel, defaultLogLevel)),
		GracefulShutdownTimeout: getDuration(envGracefulShutdown, defaultGracefulShutdown),
		MaxInFlightTransactions: getInt(envMaxInFlight, defaultMaxInFlight),
	}, nil
}

func getString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
