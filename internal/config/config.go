// Package config loads simulator settings.
//
// Sources are applied in order, later ones winning:
// built-in defaults, a TOML or YAML file,
// a .env file, then SETASSOC_* environment variables.
// Command line flags are applied by the caller.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jedisct1/dlog"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/djdv/go-setassoc"
	"github.com/djdv/go-setassoc/internal/policy"
	"github.com/djdv/go-setassoc/internal/trace"
)

// Config describes a batch of simulation runs.
type Config struct {
	// Capacity is the number of entries every policy holds.
	Capacity int `toml:"capacity" yaml:"capacity"`
	// Policies to run; see policy.Names.
	Policies []string `toml:"policies" yaml:"policies"`
	// Patterns to generate; see trace.Names.
	// Ignored when TraceFile is set.
	Patterns []string `toml:"patterns" yaml:"patterns"`
	// TraceFile replays recorded keys instead of generated patterns.
	TraceFile string `toml:"trace_file" yaml:"trace_file"`
	// Seed for the pattern generators.
	Seed int64 `toml:"seed" yaml:"seed"`
	// Warmup accesses excluded from the counts.
	Warmup int `toml:"warmup" yaml:"warmup"`
	// EWMAAge is the decay age of the smoothed hit rate.
	EWMAAge float64 `toml:"ewma_age" yaml:"ewma_age"`
	// LogLevel is a dlog severity, 0 (debug) to 6 (fatal).
	LogLevel int `toml:"log_level" yaml:"log_level"`
	// LogFile redirects diagnostics away from stderr.
	LogFile string `toml:"log_file" yaml:"log_file"`
	// ReportFile receives result lines through a rotating writer.
	ReportFile string `toml:"report_file" yaml:"report_file"`
	// ReportMaxSize is the rotation threshold in megabytes.
	ReportMaxSize int `toml:"report_max_size" yaml:"report_max_size"`
	// ReportMaxBackups is the number of rotated reports kept.
	ReportMaxBackups int `toml:"report_max_backups" yaml:"report_max_backups"`
	// MetricsFile receives Prometheus text metrics after all runs.
	MetricsFile string `toml:"metrics_file" yaml:"metrics_file"`
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SETASSOC_"

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Capacity:         1024,
		Policies:         []string{policy.Direct, policy.FourWay},
		Patterns:         trace.Names(),
		Seed:             1,
		LogLevel:         int(dlog.SeverityNotice),
		ReportMaxSize:    10,
		ReportMaxBackups: 1,
	}
}

// Load reads the file at path over the defaults.
// The format is chosen by extension: .toml, .yaml, or .yml.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(path, &config)
	case ".yaml", ".yml":
		err = decodeYAML(path, &config)
	default:
		err = errors.Errorf("unsupported config extension %q", ext)
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}
	return config, nil
}

func decodeTOML(path string, config *Config) error {
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.Errorf("unsupported key [%s]", undecoded[0])
	}
	return nil
}

func decodeYAML(path string, config *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	return decoder.Decode(config)
}

// LoadDotEnv loads variables from the given .env files
// (default ".env") without overriding variables already set.
// Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			present = append(present, file)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return errors.Wrap(godotenv.Load(present...), "load env")
}

// ApplyEnv overrides fields from SETASSOC_* variables,
// e.g. SETASSOC_CAPACITY=4096 or SETASSOC_POLICIES=4way,lru.
func (c *Config) ApplyEnv() error {
	ints := map[string]*int{
		"CAPACITY":           &c.Capacity,
		"WARMUP":             &c.Warmup,
		"LOG_LEVEL":          &c.LogLevel,
		"REPORT_MAX_SIZE":    &c.ReportMaxSize,
		"REPORT_MAX_BACKUPS": &c.ReportMaxBackups,
	}
	for name, field := range ints {
		value, ok := lookupEnv(name)
		if !ok {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "%s%s", EnvPrefix, name)
		}
		*field = parsed
	}
	if value, ok := lookupEnv("SEED"); ok {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "%sSEED", EnvPrefix)
		}
		c.Seed = seed
	}
	if value, ok := lookupEnv("EWMA_AGE"); ok {
		age, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.Wrapf(err, "%sEWMA_AGE", EnvPrefix)
		}
		c.EWMAAge = age
	}
	lists := map[string]*[]string{
		"POLICIES": &c.Policies,
		"PATTERNS": &c.Patterns,
	}
	for name, field := range lists {
		if value, ok := lookupEnv(name); ok {
			*field = SplitList(value)
		}
	}
	strs := map[string]*string{
		"TRACE_FILE":   &c.TraceFile,
		"LOG_FILE":     &c.LogFile,
		"REPORT_FILE":  &c.ReportFile,
		"METRICS_FILE": &c.MetricsFile,
	}
	for name, field := range strs {
		if value, ok := lookupEnv(name); ok {
			*field = value
		}
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	return os.LookupEnv(EnvPrefix + name)
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate reports the first setting that cannot be run.
func (c *Config) Validate() error {
	// Every policy shares the capacity, so it must suit the strictest.
	if c.Capacity < setassoc.Ways || trace.NextPow2(c.Capacity) != c.Capacity {
		return errors.Errorf("capacity must be a power of two >=%d, got %d",
			setassoc.Ways, c.Capacity)
	}
	if len(c.Policies) == 0 {
		return errors.New("no policies configured")
	}
	for _, name := range c.Policies {
		if !slices.Contains(policy.Names(), name) {
			return errors.Errorf("unknown policy %q (want one of %v)", name, policy.Names())
		}
	}
	if c.TraceFile == "" {
		if len(c.Patterns) == 0 {
			return errors.New("no patterns or trace file configured")
		}
		for _, name := range c.Patterns {
			if _, ok := trace.Lookup(name); !ok {
				return errors.Errorf("unknown pattern %q (want one of %v)", name, trace.Names())
			}
		}
	}
	switch {
	case c.Warmup < 0:
		return errors.Errorf("warmup must not be negative, got %d", c.Warmup)
	case c.EWMAAge < 0:
		return errors.Errorf("ewma_age must not be negative, got %g", c.EWMAAge)
	case c.LogLevel < int(dlog.SeverityDebug) || c.LogLevel >= int(dlog.SeverityLast):
		return errors.Errorf("log_level must be in [%d,%d], got %d",
			dlog.SeverityDebug, dlog.SeverityFatal, c.LogLevel)
	}
	return nil
}
