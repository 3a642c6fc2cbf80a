package config

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

const (
	DefaultFile    = "intrig.yaml"
	CurrentVersion = "1.0.0"

	versionConstraint = "^1.0.0"
)

const (
	SourceTypeFile = "file"
	SourceTypeURL  = "url"

	// DefaultSourceType is the loader key of sources added without one.
	DefaultSourceType = "openapi"
)

var statusPattern = regexp.MustCompile(`^[1-5][0-9][0-9]$`)

type Config struct {
	Version         string         `koanf:"version"`
	Type            string         `koanf:"type"`
	Lang            string         `koanf:"lang"`
	Output          string         `koanf:"output"`
	Templates       TemplateConfig `koanf:"templates"`
	SuccessStatuses []string       `koanf:"success-statuses"`
	Concurrency     int            `koanf:"concurrency"`
	Initialisms     []string       `koanf:"additional-initialisms"`
	Sources         []Source       `koanf:"sources"`

	path string
}

type TemplateConfig struct {
	Dir string `koanf:"dir"`
}

type Source struct {
	Name       string `koanf:"name"`
	Type       string `koanf:"type"`
	SourceType string `koanf:"source-type"`
	File       string `koanf:"file"`
	URL        string `koanf:"url"`
}

// Default returns the configuration init writes for a new project.
func Default() *Config {
	return &Config{
		Version:         CurrentVersion,
		Type:            "react",
		Lang:            "ts",
		Output:          "src/intrig",
		SuccessStatuses: []string{"200"},
		Concurrency:     4,
		Sources:         []Source{},
		path:            DefaultFile,
	}
}

// Generator returns the generator registry key, e.g. "react-ts".
func (c *Config) Generator() string {
	if c.Lang == "" {
		return c.Type
	}
	return c.Type + "-" + c.Lang
}

// Path returns the file the configuration was loaded from or saves to.
func (c *Config) Path() string {
	return c.path
}

// Dir is the directory relative source files and the output root resolve
// against.
func (c *Config) Dir() string {
	if c.path == "" {
		return "."
	}
	return filepath.Dir(c.path)
}

// OutputRoot returns the output directory of one source.
func (c *Config) OutputRoot(source string) string {
	out := c.Output
	if !filepath.IsAbs(out) {
		out = filepath.Join(c.Dir(), out)
	}
	return filepath.Join(out, source)
}

// BindCommonFlags binds the flags every command accepts.
func BindCommonFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: intrig.yaml)")
	flags.StringP("output", "o", "", "Output directory")
	flags.String("templates", "", "Custom templates directory")
	flags.String("type", "", "Generator type, e.g. react")
	flags.String("lang", "", "Generator language, e.g. ts")
	flags.StringSlice("success-statuses", nil, "Response statuses treated as success")
	flags.Int("concurrency", 0, "Template units rendered in parallel")
	flags.StringSlice("additional-initialisms", nil, "Extra initialisms for case helpers")
}

// ConfigPath returns the config file chosen by the --config flag, falling
// back to intrig.yaml in the working directory.
func ConfigPath(cmd *cobra.Command) string {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile, _ = cmd.PersistentFlags().GetString("config")
	}
	if configFile == "" {
		configFile = DefaultFile
	}
	return configFile
}

// Load reads the config file and overlays changed flags.
func Load(cmd *cobra.Command) (*Config, error) {
	configFile := ConfigPath(cmd)
	if _, err := os.Stat(configFile); err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "reading config file %s", configFile),
			"run 'intrig init' to create one",
		)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, errors.Wrap(err, "loading flags")
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	cfg.path = configFile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	getString := func(name string) string {
		if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
			return v
		}
		if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	getStringSlice := func(name string) []string {
		if v, err := cmd.Flags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		if v, err := cmd.PersistentFlags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		return nil
	}

	flagChanged := func(name string) bool {
		return cmd.Flags().Changed(name) || cmd.PersistentFlags().Changed(name)
	}

	getInt := func(name string) int {
		if v, err := cmd.Flags().GetInt(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetInt(name); err == nil {
			return v
		}
		return 0
	}

	if v := getString("output"); v != "" {
		m["output"] = v
	}
	if v := getString("templates"); v != "" {
		m["templates.dir"] = v
	}
	if v := getString("type"); v != "" {
		m["type"] = v
	}
	if v := getString("lang"); v != "" {
		m["lang"] = v
	}
	if v := getStringSlice("success-statuses"); len(v) > 0 {
		m["success-statuses"] = v
	}
	if flagChanged("concurrency") {
		m["concurrency"] = getInt("concurrency")
	}
	if v := getStringSlice("additional-initialisms"); len(v) > 0 {
		m["additional-initialisms"] = v
	}

	return m
}

func (c *Config) Validate() error {
	version, err := semver.NewVersion(c.Version)
	if err != nil {
		return errors.Wrapf(err, "invalid config version %q", c.Version)
	}
	constraint, err := semver.NewConstraint(versionConstraint)
	if err != nil {
		return errors.Wrap(err, "parsing version constraint")
	}
	if !constraint.Check(version) {
		return errors.WithHint(
			errors.Newf("config version %s is not supported", c.Version),
			"this release reads config versions "+versionConstraint,
		)
	}

	if c.Type == "" {
		return errors.New("generator type is required")
	}
	if c.Output == "" {
		return errors.New("output directory is required")
	}
	if c.Concurrency < 0 {
		return errors.Newf("invalid concurrency: %d", c.Concurrency)
	}
	for _, s := range c.SuccessStatuses {
		if !statusPattern.MatchString(s) {
			return errors.Newf("invalid success status: %q", s)
		}
	}

	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.Name] {
			return errors.Newf("duplicate source: %s", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

func (s Source) Validate() error {
	if s.Name == "" {
		return errors.New("source name is required")
	}
	switch s.SourceType {
	case SourceTypeFile, "":
		if s.File == "" {
			return errors.Newf("source %s: file is required", s.Name)
		}
	case SourceTypeURL:
		if s.URL == "" {
			return errors.Newf("source %s: url is required", s.Name)
		}
	default:
		return errors.Newf("source %s: invalid source-type %s (valid: file, url)", s.Name, s.SourceType)
	}
	return nil
}

// Source returns the source named name.
func (c *Config) Source(name string) (Source, bool) {
	i := slices.IndexFunc(c.Sources, func(s Source) bool { return s.Name == name })
	if i < 0 {
		return Source{}, false
	}
	return c.Sources[i], true
}

func (c *Config) AddSource(s Source) error {
	if s.SourceType == "" {
		s.SourceType = SourceTypeFile
	}
	if s.Type == "" {
		s.Type = DefaultSourceType
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if _, ok := c.Source(s.Name); ok {
		return errors.Newf("source %s already exists", s.Name)
	}
	c.Sources = append(c.Sources, s)
	return nil
}

func (c *Config) RemoveSource(name string) error {
	i := slices.IndexFunc(c.Sources, func(s Source) bool { return s.Name == name })
	if i < 0 {
		return errors.Newf("source %s not found", name)
	}
	c.Sources = slices.Delete(c.Sources, i, i+1)
	return nil
}

// SaveTo writes the configuration as YAML to path and remembers it.
func (c *Config) SaveTo(path string) error {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(c.toMap(), ""), nil); err != nil {
		return errors.Wrap(err, "building config")
	}
	data, err := k.Marshal(yaml.Parser())
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	c.path = path
	return nil
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = DefaultFile
	}
	return c.SaveTo(path)
}

func (c *Config) toMap() map[string]any {
	sources := make([]any, len(c.Sources))
	for i, s := range c.Sources {
		sources[i] = map[string]any{
			"name":        s.Name,
			"type":        s.Type,
			"source-type": s.SourceType,
			"file":        s.File,
			"url":         s.URL,
		}
	}
	statuses := make([]any, len(c.SuccessStatuses))
	for i, s := range c.SuccessStatuses {
		statuses[i] = s
	}
	m := map[string]any{
		"version":          c.Version,
		"type":             c.Type,
		"lang":             c.Lang,
		"output":           c.Output,
		"templates":        map[string]any{"dir": c.Templates.Dir},
		"success-statuses": statuses,
		"concurrency":      c.Concurrency,
		"sources":          sources,
	}
	if len(c.Initialisms) > 0 {
		initialisms := make([]any, len(c.Initialisms))
		for i, s := range c.Initialisms {
			initialisms[i] = s
		}
		m["additional-initialisms"] = initialisms
	}
	return m
}
