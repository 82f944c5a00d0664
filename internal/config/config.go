// Package config loads form definitions from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"cf-upload/internal/control"
)

// Field is one question of the form.
type Field struct {
	Name        string            `yaml:"name"`
	Tag         string            `yaml:"tag"`
	Type        string            `yaml:"type"`
	Placeholder string            `yaml:"placeholder"`
	Value       string            `yaml:"value"`
	Options     []string          `yaml:"options"`
	Attributes  map[string]string `yaml:"attributes"`
}

// Kind resolves the registry key: the input type for <input>, otherwise the tag.
func (f Field) Kind() string {
	if f.Tag == "" || f.Tag == "input" {
		if f.Type == "" {
			return control.KindText
		}
		return f.Type
	}
	return f.Tag
}

// ControlTag converts the field into the tag a control is bound to.
func (f Field) ControlTag() control.Tag {
	attrs := make(map[string]string, len(f.Attributes))
	for k, v := range f.Attributes {
		attrs[k] = v
	}
	return control.Tag{
		Name:        f.Name,
		Kind:        f.Kind(),
		Attributes:  attrs,
		Options:     append([]string(nil), f.Options...),
		Placeholder: f.Placeholder,
		Value:       f.Value,
	}
}

// Config is a whole form definition.
type Config struct {
	SettleDelay Duration          `yaml:"settle_delay"`
	Dictionary  map[string]string `yaml:"dictionary"`
	Fields      []Field           `yaml:"fields"`
}

// Duration accepts "2s" style strings or integer milliseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", n.Line)
	}
	if ms, err := strconv.ParseInt(n.Value, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	v, err := time.ParseDuration(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

var (
	ErrNoFields    = errors.New("config: form has no fields")
	ErrFieldNoName = errors.New("config: field without name")
)

// Default returns a single-question form asking for one file.
func Default(maxSize int64) *Config {
	f := Field{Name: "file", Tag: "input", Type: control.KindFile}
	if maxSize > 0 {
		f.Attributes = map[string]string{control.AttrMaxSize: strconv.FormatInt(maxSize, 10)}
	}
	return &Config{
		SettleDelay: Duration(control.DefaultSettleDelay),
		Fields:      []Field{f},
	}
}

// FileField returns the first field bound to the upload control.
func (c *Config) FileField() (Field, bool) {
	for _, f := range c.Fields {
		if f.Kind() == control.KindFile {
			return f, true
		}
	}
	return Field{}, false
}

// Load reads a form definition from path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads a form definition from r and validates it.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = Duration(control.DefaultSettleDelay)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every field can be bound to a control.
func (c *Config) Validate() error {
	if len(c.Fields) == 0 {
		return ErrNoFields
	}
	seen := make(map[string]struct{}, len(c.Fields))
	for i, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d: %w", i, ErrFieldNoName)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("field %q: duplicate name", f.Name)
		}
		seen[f.Name] = struct{}{}
		if _, _, err := control.ParseMaxFileSize(f.ControlTag()); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return nil
}
