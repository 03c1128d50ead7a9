package main

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultLatitude  = 48.8566
	defaultLongitude = 2.3522
	defaultLogLevel  = "info"
	defaultLogOutput = "stdout"

	// defaultPrivKey is the demonstration key only. A real deployment must
	// source the scalar from a secret store; the pipeline itself always
	// receives it as injected configuration, never a compiled-in constant.
	defaultPrivKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
)

// Config holds the demonstration configuration.
type Config struct {
	Report ReportConfig `mapstructure:"report"`
	Key    KeyConfig    `mapstructure:"key"`
	Log    LogConfig    `mapstructure:"log"`
}

// ReportConfig holds the geolocation report inputs.
type ReportConfig struct {
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
	Timestamp uint64  `mapstructure:"timestamp"`
}

// KeyConfig holds the signing key configuration.
type KeyConfig struct {
	PrivKey string `mapstructure:"privkey"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// loadConfig loads configuration from flags, environment variables and
// defaults, in that order of precedence.
func loadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("report.latitude", defaultLatitude)
	v.SetDefault("report.longitude", defaultLongitude)
	v.SetDefault("report.timestamp", uint64(0))
	v.SetDefault("key.privkey", defaultPrivKey)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)

	flag.Float64("report.latitude", defaultLatitude, "report latitude in degrees")
	flag.Float64("report.longitude", defaultLongitude, "report longitude in degrees")
	flag.Uint64("report.timestamp", 0, "report timestamp in seconds since epoch (0 = now)")
	flag.StringP("key.privkey", "k", defaultPrivKey, "hex-encoded secp256k1 private scalar")
	flag.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error)")
	flag.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "geoattest\n\n")
		fmt.Fprintf(os.Stderr, "Signs a geolocation report both directly and inside a recursive\n")
		fmt.Fprintf(os.Stderr, "zero-knowledge proof, then checks the two signatures agree.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: geoattest [flags]\n\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables are also available with the GEOATTEST_ prefix,\n")
		fmt.Fprintf(os.Stderr, "  with dashes and dots replaced by underscores (e.g. GEOATTEST_KEY_PRIVKEY).\n")
	}

	flag.CommandLine.SortFlags = false
	flag.Parse()

	if err := v.BindPFlags(flag.CommandLine); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	v.SetEnvPrefix("GEOATTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
