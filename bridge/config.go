package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	mbconfig "github.com/OliviaAI-TGDK/MirrorBlade/internal/config"
)

// Config is the facade tuning surface. It narrows the underlying component
// configs; the hot runtime document (MirrorBlade.json) is separate and
// owned by the config store.
type Config struct {
	// HostRoot anchors the runtime config file at
	// <HostRoot>/r6/config/MirrorBlade.json.
	HostRoot string `yaml:"host_root"`
	// ConfigPath overrides the derived runtime config location.
	ConfigPath string `yaml:"config_path"`
	// BootScriptPath is the optional onLoad request list replayed after the
	// server is listening. Empty derives a config.json sibling of the
	// runtime config.
	BootScriptPath string `yaml:"boot_script_path"`

	// PipeName overrides the endpoint identifier from the runtime config.
	PipeName string `yaml:"pipe_name"`
	// SocketPath overrides endpoint resolution entirely (tests, embedding).
	SocketPath string `yaml:"socket_path"`

	// Worker pool tuning.
	Workers      int  `yaml:"workers"`
	WeightHigh   int  `yaml:"weight_high"`
	WeightNormal int  `yaml:"weight_normal"`
	WeightLow    int  `yaml:"weight_low"`
	WeightIO     int  `yaml:"weight_io"`
	DrainOnStop  bool `yaml:"drain_on_stop"`

	// Logging.
	LogFilePath string `yaml:"log_file_path"`
	LogLevel    string `yaml:"log_level"`

	// MetricsEnabled toggles the metrics provider wiring.
	MetricsEnabled bool `yaml:"metrics_enabled"`
	// MetricsBackend selects the implementation when MetricsEnabled:
	//   "prom" (default), "otel", "noop". Unknown values fall back to prom.
	MetricsBackend string `yaml:"metrics_backend"`
	// MetricsListenAddr optionally serves the Prometheus handler on a local
	// address (e.g. "127.0.0.1:2112"). Empty means collect only; the
	// embedder exposes MetricsHandler itself.
	MetricsListenAddr string `yaml:"metrics_listen_addr"`

	// TracingEnabled turns on per-dispatch spans.
	TracingEnabled bool `yaml:"tracing_enabled"`

	// Watcher tuning, primarily for tests.
	WatchPollInterval time.Duration `yaml:"watch_poll_interval"`
	WatchStablePolls  int           `yaml:"watch_stable_polls"`

	// External sinks. Absent sinks are no-ops.
	Upscaler mbconfig.UpscalerSink `yaml:"-"`
	Traffic  mbconfig.TrafficSink  `yaml:"-"`
}

// Defaults returns the documented facade defaults.
func Defaults() Config {
	return Config{
		WeightHigh:   8,
		WeightNormal: 4,
		WeightLow:    1,
		WeightIO:     2,
		DrainOnStop:  true,
		LogLevel:     "info",
	}
}

func (c *Config) normalize() {
	if c.WeightHigh < 1 {
		c.WeightHigh = 8
	}
	if c.WeightNormal < 1 {
		c.WeightNormal = 4
	}
	if c.WeightLow < 1 {
		c.WeightLow = 1
	}
	if c.WeightIO < 1 {
		c.WeightIO = 2
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// RuntimeConfigPath resolves the MirrorBlade.json location.
func (c Config) RuntimeConfigPath() string {
	if c.ConfigPath != "" {
		return c.ConfigPath
	}
	return filepath.Join(c.HostRoot, "r6", "config", "MirrorBlade.json")
}

// bootScriptPath resolves the onLoad script location.
func (c Config) bootScriptPath() string {
	if c.BootScriptPath != "" {
		return c.BootScriptPath
	}
	return filepath.Join(filepath.Dir(c.RuntimeConfigPath()), "config.json")
}

// LoadConfigOverlay reads a YAML tuning file over base. Missing file
// returns base unchanged.
func LoadConfigOverlay(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, fmt.Errorf("read tuning config: %w", err)
	}
	out := base
	if err := yaml.Unmarshal(data, &out); err != nil {
		return base, fmt.Errorf("parse tuning config: %w", err)
	}
	return out, nil
}
