// Package config builds the immutable harness configuration.
//
// Precedence, lowest to highest: hardcoded defaults, an optional
// .sycheck.yaml file, command-line flags. The resulting Config is
// constructed once at startup and passed by value semantics to every
// component; nothing mutates it afterwards.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file looked up in the working directory
// when no explicit --config path is given.
const DefaultConfigFile = ".sycheck.yaml"

// Duration wraps time.Duration for YAML unmarshaling ("10s", "2m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config holds every path, tool name, and limit the harness consults.
type Config struct {
	// Compiler is the compiler under test.
	Compiler string `yaml:"compiler"`

	// Koopa-backend toolchain.
	Koopac string `yaml:"koopac"`
	LLC    string `yaml:"llc"`
	Clang  string `yaml:"clang"`

	// RISC-V-backend toolchain.
	Linker   string `yaml:"linker"`
	Emulator string `yaml:"emulator"`

	// LibPathEnv names the environment variable holding the runtime
	// support library root, consulted at the link stage.
	LibPathEnv string `yaml:"lib_path_env"`

	// BuildDir receives per-case artifacts. Created if missing, never
	// cleaned up, so failed runs can be inspected.
	BuildDir string `yaml:"build_dir"`

	// TestDirs are the corpus directories searched for source files.
	// Directories that do not exist are skipped.
	TestDirs []string `yaml:"test_dirs"`

	// Corpus file extensions.
	SourceExt string `yaml:"source_ext"`
	StdinExt  string `yaml:"stdin_ext"`
	ExpectExt string `yaml:"expect_ext"`

	// Timeout bounds every external command invocation.
	Timeout Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Compiler:   "cmake-build/compiler",
		Koopac:     "koopac",
		LLC:        "llc",
		Clang:      "clang",
		Linker:     "ld.lld",
		Emulator:   "qemu-riscv32-static",
		LibPathEnv: "CDE_LIBRARY_PATH",
		BuildDir:   "debug/test_temp",
		TestDirs: []string{
			"tests/resources/functional",
			"tests/resources/hidden_functional",
		},
		SourceExt: ".sy",
		StdinExt:  ".in",
		ExpectExt: ".out",
		Timeout:   Duration(10 * time.Second),
	}
}

// Load builds a Config from defaults overlaid with the YAML file at path.
// An empty path means "use DefaultConfigFile if present"; a missing default
// file is not an error, but a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	merge(cfg, &overlay)
	return cfg, nil
}

// merge copies every set field of overlay onto base.
func merge(base, overlay *Config) {
	if overlay.Compiler != "" {
		base.Compiler = overlay.Compiler
	}
	if overlay.Koopac != "" {
		base.Koopac = overlay.Koopac
	}
	if overlay.LLC != "" {
		base.LLC = overlay.LLC
	}
	if overlay.Clang != "" {
		base.Clang = overlay.Clang
	}
	if overlay.Linker != "" {
		base.Linker = overlay.Linker
	}
	if overlay.Emulator != "" {
		base.Emulator = overlay.Emulator
	}
	if overlay.LibPathEnv != "" {
		base.LibPathEnv = overlay.LibPathEnv
	}
	if overlay.BuildDir != "" {
		base.BuildDir = overlay.BuildDir
	}
	if len(overlay.TestDirs) > 0 {
		base.TestDirs = overlay.TestDirs
	}
	if overlay.SourceExt != "" {
		base.SourceExt = overlay.SourceExt
	}
	if overlay.StdinExt != "" {
		base.StdinExt = overlay.StdinExt
	}
	if overlay.ExpectExt != "" {
		base.ExpectExt = overlay.ExpectExt
	}
	if overlay.Timeout > 0 {
		base.Timeout = overlay.Timeout
	}
}
