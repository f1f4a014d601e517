package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	SplitterConfig struct {
		MaxSelectors          int    `yaml:"max_selectors" validate:"min=1"`
		OutputNameTemplate    string `yaml:"output_name_template" validate:"required"`
		FileNameTransliterate bool   `yaml:"file_name_transliterate"`
		Jobs                  int    `yaml:"jobs" validate:"gte=0"`
		Verify                bool   `yaml:"verify"`
		KeepEmptyParts        bool   `yaml:"keep_empty_parts"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Splitter  SplitterConfig `yaml:"splitter"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// NOTE: must match yaml field name above.
const OutputNameTemplateFieldName TemplateFieldName = "output_name_template"

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we know about are allowed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if !process {
		return cfg, nil
	}
	if err := gencfg.Sanitize(cfg); err != nil {
		return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
	}
	if err := gencfg.Validate(cfg); err != nil {
		return nil, fmt.Errorf("failed to validate configuration: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration expands embedded configuration template to get defaults
// and superimposes values from the file at path (if any) on top of them.
// Result is sanitized and validated.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if cfg, err = unmarshalConfig(data, cfg, true); err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns expanded default configuration.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

// Dump returns configuration as YAML.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
