// Package config loads depdoctor settings. Sources are applied in order,
// later ones winning: built-in defaults, a TOML file, the .env file and
// process environment, then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"depdoctor/internal/deptree"
	llmclient "depdoctor/internal/llmClient"
	"depdoctor/internal/report"
	"depdoctor/internal/versions"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "depdoctor.toml"

// Duration is a time.Duration that unmarshals from TOML strings like "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	Build     BuildConfig     `toml:"build"`
	Tree      TreeConfig      `toml:"tree"`
	LLM       LLMConfig       `toml:"llm"`
	Changelog ChangelogConfig `toml:"changelog"`
	Versions  VersionsConfig  `toml:"versions"`
	Output    OutputConfig    `toml:"output"`
	Log       LogConfig       `toml:"log"`
}

type BuildConfig struct {
	File  string   `toml:"file"`
	Dir   string   `toml:"dir"`
	Task  string   `toml:"task"`
	Maven string   `toml:"maven"`
	Goals []string `toml:"goals"`
	// Timeout bounds the build and tree processes; zero waits forever.
	Timeout Duration `toml:"timeout"`
}

type TreeConfig struct {
	EndMarker string `toml:"end_marker"`
}

type LLMConfig struct {
	Provider    string   `toml:"provider"`
	Model       string   `toml:"model"`
	APIKey      string   `toml:"api_key"`
	BaseURL     string   `toml:"base_url"`
	MaxAttempts int      `toml:"max_attempts"`
	Timeout     Duration `toml:"timeout"`

	// TranscriptDir, when set, receives every prompt and raw answer.
	TranscriptDir string `toml:"transcript_dir"`
}

type ChangelogConfig struct {
	SearchURL      string   `toml:"search_url"`
	ResultSelector string   `toml:"result_selector"`
	Timeout        Duration `toml:"timeout"`
	UserAgent      string   `toml:"user_agent"`
	CacheSize      int      `toml:"cache_size"`
	StripHTML      bool     `toml:"strip_html"`
}

type VersionsConfig struct {
	Order string `toml:"order"`
}

type OutputConfig struct {
	Format string `toml:"format"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			File:  "pom.xml",
			Dir:   ".",
			Maven: "mvn",
			Goals: []string{"clean", "compile"},
		},
		Tree: TreeConfig{EndMarker: "brace"},
		LLM: LLMConfig{
			Provider:    "openai",
			MaxAttempts: 1,
			Timeout:     Duration{60 * time.Second},
		},
		Changelog: ChangelogConfig{
			SearchURL:      "https://html.duckduckgo.com/html/?q=%s",
			ResultSelector: "a.result__a",
			Timeout:        Duration{10 * time.Second},
			CacheSize:      64,
		},
		Versions: VersionsConfig{Order: "lexical"},
		Output:   OutputConfig{Format: "json"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path falls back to DefaultFile
// when it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultFile); err != nil {
			return cfg, nil
		}
		path = DefaultFile
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is fine.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg from DEPDOCTOR_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	set := func(dst *string, name string) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v
		}
	}
	set(&c.LLM.Provider, "DEPDOCTOR_PROVIDER")
	set(&c.LLM.Model, "DEPDOCTOR_MODEL")
	set(&c.LLM.APIKey, "DEPDOCTOR_API_KEY")
	set(&c.LLM.BaseURL, "DEPDOCTOR_BASE_URL")
	set(&c.Log.Level, "DEPDOCTOR_LOG_LEVEL")
	set(&c.Output.Format, "DEPDOCTOR_FORMAT")
}

// APIKey is the configured credential, else the provider's conventional
// environment variable.
func (c *Config) APIKey() string {
	if c.LLM.APIKey != "" {
		return c.LLM.APIKey
	}
	return llmclient.APIKeyFromEnv(c.LLM.Provider)
}

// Validate rejects unknown enum values and impossible numbers.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Build.File) == "" && strings.TrimSpace(c.Build.Task) == "" {
		errs = append(errs, errors.New("build.file is empty"))
	}
	if c.Build.Timeout.Duration < 0 {
		errs = append(errs, errors.New("build.timeout is negative"))
	}
	if _, err := deptree.NewExtractor(c.Tree.EndMarker); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains(llmclient.Providers(), strings.ToLower(strings.TrimSpace(c.LLM.Provider))) {
		errs = append(errs, fmt.Errorf("llm.provider %q is not one of %s", c.LLM.Provider, strings.Join(llmclient.Providers(), ", ")))
	}
	if c.LLM.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("llm.max_attempts must be at least 1, got %d", c.LLM.MaxAttempts))
	}
	if !strings.Contains(c.Changelog.SearchURL, "%s") {
		errs = append(errs, fmt.Errorf("changelog.search_url %q has no %%s placeholder", c.Changelog.SearchURL))
	}
	if c.Changelog.Timeout.Duration <= 0 {
		errs = append(errs, errors.New("changelog.timeout must be positive"))
	}
	if c.Changelog.CacheSize < 1 {
		errs = append(errs, errors.New("changelog.cache_size must be positive"))
	}
	if _, err := versions.OrderFor(c.Versions.Order); err != nil {
		errs = append(errs, err)
	}
	if !report.ValidFormat(c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format %q is not one of %s", c.Output.Format, strings.Join(report.Formats(), ", ")))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Flags are the command-line overrides. Only flags the user actually set
// are applied.
type Flags struct {
	fs *flag.FlagSet

	ConfigPath   string
	File         string
	Dir          string
	Task         string
	Provider     string
	Model        string
	TreeEnd      string
	VersionOrder string
	Format       string
	FetchTimeout time.Duration
	BuildTimeout time.Duration
	MaxAttempts  int
	LogLevel     string
	LogFormat    string
	Transcripts  string
}

// RegisterFlags defines the override flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.ConfigPath, "config", "", "TOML config file (default ./"+DefaultFile+" if present)")
	fs.StringVar(&f.File, "file", "pom.xml", "build file name")
	fs.StringVar(&f.Dir, "dir", ".", "project directory")
	fs.StringVar(&f.Task, "task", "", "alternate build command, run with /bin/sh -c")
	fs.StringVar(&f.Provider, "provider", "openai", "LLM provider: "+strings.Join(llmclient.Providers(), ", "))
	fs.StringVar(&f.Model, "model", "", "LLM model (default depends on provider)")
	fs.StringVar(&f.TreeEnd, "tree-end", "brace", "dependency tree end marker: brace or separator")
	fs.StringVar(&f.VersionOrder, "version-order", "lexical", "version ordering: lexical or semver")
	fs.StringVar(&f.Format, "format", "json", "output format: json or yaml")
	fs.DurationVar(&f.FetchTimeout, "fetch-timeout", 10*time.Second, "changelog fetch timeout")
	fs.DurationVar(&f.BuildTimeout, "build-timeout", 0, "build process timeout (0 = none)")
	fs.IntVar(&f.MaxAttempts, "max-attempts", 1, "LLM attempts per call")
	fs.StringVar(&f.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&f.LogFormat, "log-format", "text", "log format: text or json")
	fs.StringVar(&f.Transcripts, "transcript-dir", "", "write prompts and raw LLM answers to this directory")
	return f
}

// Apply copies every explicitly set flag into cfg.
func (f *Flags) Apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "file":
			cfg.Build.File = f.File
		case "dir":
			cfg.Build.Dir = f.Dir
		case "task":
			cfg.Build.Task = f.Task
		case "provider":
			cfg.LLM.Provider = f.Provider
		case "model":
			cfg.LLM.Model = f.Model
		case "tree-end":
			cfg.Tree.EndMarker = f.TreeEnd
		case "version-order":
			cfg.Versions.Order = f.VersionOrder
		case "format":
			cfg.Output.Format = f.Format
		case "fetch-timeout":
			cfg.Changelog.Timeout = Duration{f.FetchTimeout}
		case "build-timeout":
			cfg.Build.Timeout = Duration{f.BuildTimeout}
		case "max-attempts":
			cfg.LLM.MaxAttempts = f.MaxAttempts
		case "log-level":
			cfg.Log.Level = f.LogLevel
		case "log-format":
			cfg.Log.Format = f.LogFormat
		case "transcript-dir":
			cfg.LLM.TranscriptDir = f.Transcripts
		}
	})
}

// Resolve runs the whole layering for args: flags are parsed first so the
// config path is known, then file, .env, environment and flags are applied.
func Resolve(fs *flag.FlagSet, args []string, getenv func(string) string) (*Config, error) {
	flags := RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := LoadDotEnv(""); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(getenv)
	flags.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// String summarises the effective settings for debug logs. The API key is
// reported only as set or unset.
func (c *Config) String() string {
	key := "unset"
	if c.APIKey() != "" {
		key = "set"
	}
	return "provider=" + c.LLM.Provider + " model=" + c.LLM.Model + " api_key=" + key +
		" tree_end=" + c.Tree.EndMarker + " order=" + c.Versions.Order +
		" format=" + c.Output.Format + " attempts=" + strconv.Itoa(c.LLM.MaxAttempts)
}
