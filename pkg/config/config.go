// Package config loads the YAML project file that lists the components
// and rules of a checker.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dd0wney/capsl/pkg/ingest"
	"github.com/dd0wney/capsl/pkg/validation"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultName           = "checker"
	DefaultTranslatorPath = "ltl2tgba"
	DefaultTimeout        = 30 * time.Second
	DefaultWorkers        = 4
	DefaultOutputDir      = "outputs"
	DefaultArtifact       = "checker.json"
	DefaultLogLevel       = "info"
)

// Config is a checker project.
type Config struct {
	Name         string           `yaml:"name"`
	Components   []string         `yaml:"components"`
	Rules        []string         `yaml:"rules"`
	ComposeRules bool             `yaml:"compose_rules"`
	Translator   TranslatorConfig `yaml:"translator"`
	Output       OutputConfig     `yaml:"output"`
	LogLevel     string           `yaml:"log_level"`
}

// TranslatorConfig selects how rules become automata. Translations maps
// rule text to a pre-computed HOA file and takes precedence over running
// the external tool. Up to Workers rules are translated at once.
type TranslatorConfig struct {
	Path         string            `yaml:"path"`
	Args         []string          `yaml:"args"`
	Timeout      time.Duration     `yaml:"timeout"`
	Workers      int               `yaml:"workers"`
	Translations map[string]string `yaml:"translations"`
}

// OutputConfig controls what the CLI writes.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	Artifact    string `yaml:"artifact"`
	Compress    bool   `yaml:"compress"`
	Diagrams    bool   `yaml:"diagrams"`
	MetricsFile string `yaml:"metrics_file"`
}

// Load reads, resolves and validates a project file. Relative paths are
// taken from the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, filepath.Dir(path))
}

// Parse is Load for in-memory content.
func Parse(data []byte, baseDir string) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.resolve(baseDir)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve(baseDir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	for i := range c.Components {
		c.Components[i] = abs(c.Components[i])
	}
	for i := range c.Rules {
		c.Rules[i] = abs(c.Rules[i])
	}
	for rule, file := range c.Translator.Translations {
		c.Translator.Translations[rule] = abs(file)
	}
	// Bare commands are looked up on $PATH
	if strings.ContainsRune(c.Translator.Path, filepath.Separator) {
		c.Translator.Path = abs(c.Translator.Path)
	}
	c.Output.Dir = abs(validation.DefaultOr(c.Output.Dir, DefaultOutputDir))
	c.Output.MetricsFile = abs(c.Output.MetricsFile)
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.Name = validation.DefaultOr(c.Name, DefaultName)
	c.Translator.Path = validation.DefaultOr(c.Translator.Path, DefaultTranslatorPath)
	c.Translator.Timeout = validation.DefaultOrDuration(c.Translator.Timeout, DefaultTimeout)
	c.Translator.Workers = validation.DefaultOr(c.Translator.Workers, DefaultWorkers)
	if c.Translator.Args == nil {
		c.Translator.Args = append([]string(nil), ingest.DefaultTranslatorArgs...)
	}
	c.Output.Dir = validation.DefaultOr(c.Output.Dir, DefaultOutputDir)
	c.Output.Artifact = validation.DefaultOr(c.Output.Artifact, DefaultArtifact)
	c.LogLevel = validation.DefaultOr(strings.ToLower(c.LogLevel), DefaultLogLevel)
}

// Validate checks the whole project and reports every problem at once.
func (c *Config) Validate() error {
	cv := validation.NewConfigValidator("config")

	cv.Identifier("name", c.Name).
		NonEmpty("components", len(c.Components)).
		Unique("components", c.Components).
		Unique("rules", c.Rules).
		OneOf("log_level", c.LogLevel, []string{"debug", "info", "warn", "error"}).
		RangeDuration("translator.timeout", c.Translator.Timeout, time.Second, 10*time.Minute).
		RangeInt("translator.workers", c.Translator.Workers, 1, 64).
		Required("output.dir", c.Output.Dir).
		Custom("output.artifact", func() error {
			if filepath.Base(c.Output.Artifact) != c.Output.Artifact {
				return fmt.Errorf("%q must be a file name, not a path", c.Output.Artifact)
			}
			return nil
		})

	for i, p := range c.Components {
		cv.FileExists(fmt.Sprintf("components[%d]", i), p)
	}
	for i, p := range c.Rules {
		cv.FileExists(fmt.Sprintf("rules[%d]", i), p)
	}
	for rule, p := range c.Translator.Translations {
		cv.FileExists(fmt.Sprintf("translator.translations[%q]", rule), p)
	}
	cv.When(len(c.Rules) > 0 && len(c.Translator.Translations) == 0, func(v *validation.ConfigValidator) {
		v.Required("translator.path", c.Translator.Path)
	})

	return cv.Validate()
}

// ArtifactPath returns where the checker artifact is written.
func (c *Config) ArtifactPath() string {
	name := c.Output.Artifact
	if c.Output.Compress && !strings.HasSuffix(name, ".sz") {
		name += ".sz"
	}
	return filepath.Join(c.Output.Dir, name)
}
