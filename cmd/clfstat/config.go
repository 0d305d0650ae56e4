package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/itchyny/gojq"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of a run. Values come from the YAML file named by
// --config, if any, and are overridden by flags given on the command line.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	SkipInvalid bool   `yaml:"skip_invalid"`
	Exec        string `yaml:"exec"`
	Include     string `yaml:"include"`
	Exclude     string `yaml:"exclude"`
	Head        int    `yaml:"head"`
	Top         int    `yaml:"top"`
	JQ          string `yaml:"jq"`
	MetricsFile string `yaml:"metrics_file"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// loadConfig reads the YAML file at path over the defaults. An empty path
// means no file. Unknown keys are an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// applyFlags copies into cfg the value of every flag in fs that was set on
// the command line. from holds the parsed flag values.
func applyFlags(fs *pflag.FlagSet, cfg *Config, from Config) {
	set := map[string]func(){
		"log-level":    func() { cfg.LogLevel = from.LogLevel },
		"log-format":   func() { cfg.LogFormat = from.LogFormat },
		"skip-invalid": func() { cfg.SkipInvalid = from.SkipInvalid },
		"exec":         func() { cfg.Exec = from.Exec },
		"include":      func() { cfg.Include = from.Include },
		"exclude":      func() { cfg.Exclude = from.Exclude },
		"head":         func() { cfg.Head = from.Head },
		"top":          func() { cfg.Top = from.Top },
		"jq":           func() { cfg.JQ = from.JQ },
		"metrics-file": func() { cfg.MetricsFile = from.MetricsFile },
	}
	fs.Visit(func(f *pflag.Flag) {
		if apply, ok := set[f.Name]; ok {
			apply()
		}
	})
}

func (c Config) validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q: want console or json", c.LogFormat)
	}
	if c.Head < 0 {
		return fmt.Errorf("invalid head %d: must not be negative", c.Head)
	}
	if c.Top < 0 {
		return fmt.Errorf("invalid top %d: must not be negative", c.Top)
	}
	for name, expr := range map[string]string{"include": c.Include, "exclude": c.Exclude} {
		if _, err := regexp.Compile(expr); err != nil {
			return fmt.Errorf("invalid %s pattern: %w", name, err)
		}
	}
	if c.JQ != "" {
		q, err := gojq.Parse(c.JQ)
		if err == nil {
			_, err = gojq.Compile(q)
		}
		if err != nil {
			return fmt.Errorf("invalid jq query: %w", err)
		}
	}
	return nil
}
