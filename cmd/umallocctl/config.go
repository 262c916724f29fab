package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML form of the heap flags. Keys mirror flag names.
type fileConfig struct {
	Backend       string `yaml:"backend"`
	Limit         string `yaml:"limit"`
	GrowthFactor  int    `yaml:"growth_factor"`
	MaxChunk      string `yaml:"max_chunk"`
	Check         *bool  `yaml:"check"`
	PanicOnMisuse *bool  `yaml:"panic_on_misuse"`
	Seed          *int64 `yaml:"seed"`
	MaxSize       string `yaml:"max_size"`
}

func loadConfig(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	var cfg fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// flagValues maps flag names to the values the file sets.
func (c *fileConfig) flagValues() map[string]string {
	m := make(map[string]string)
	if c.Backend != "" {
		m["backend"] = c.Backend
	}
	if c.Limit != "" {
		m["limit"] = c.Limit
	}
	if c.GrowthFactor != 0 {
		m["growth-factor"] = strconv.Itoa(c.GrowthFactor)
	}
	if c.MaxChunk != "" {
		m["max-chunk"] = c.MaxChunk
	}
	if c.Check != nil {
		m["check"] = strconv.FormatBool(*c.Check)
	}
	if c.PanicOnMisuse != nil {
		m["panic-on-misuse"] = strconv.FormatBool(*c.PanicOnMisuse)
	}
	if c.Seed != nil {
		m["seed"] = strconv.FormatInt(*c.Seed, 10)
	}
	if c.MaxSize != "" {
		m["max-size"] = c.MaxSize
	}
	return m
}

// apply sets every flag of fs that the file names and the command line left
// alone. Flags the command does not define are ignored.
func (c *fileConfig) apply(fs *pflag.FlagSet) error {
	for name, value := range c.flagValues() {
		f := fs.Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}
	}
	return nil
}
