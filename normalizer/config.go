package normalizer

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/moriyoshi/mailaddr/internal/expand"
)

// Config is the file form of the normalizer options. JSON documents are
// accepted as well since they are valid YAML.
type Config struct {
	MaxAddresses int          `yaml:"max_addresses" json:"max_addresses"`
	FillMissing  bool         `yaml:"fill_missing" json:"fill_missing"`
	Quote        *bool        `yaml:"quote" json:"quote"`
	ASCIIDomains bool         `yaml:"ascii_domains" json:"ascii_domains"`
	ExtraHeaders []string     `yaml:"extra_headers" json:"extra_headers"`
	ContentType  bool         `yaml:"content_type" json:"content_type"`
	Rewrite      RewriteRules `yaml:"rewrite" json:"rewrite"`
}

func LoadConfig(b []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	for i, h := range c.ExtraHeaders {
		c.ExtraHeaders[i] = expand.ExpandEnv(h)
	}
	return c, nil
}

func LoadConfigFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadConfig(b)
}

// Options turns c into options. A zero MaxAddresses and an absent Quote
// keep the defaults.
func (c *Config) Options() []NormalizerOptionFunc {
	options := []NormalizerOptionFunc{
		WithFillMissing(c.FillMissing),
		WithASCIIDomains(c.ASCIIDomains),
		WithContentType(c.ContentType),
		WithExtraHeaders(c.ExtraHeaders...),
		WithRewriteRules(c.Rewrite),
	}
	if c.Quote != nil {
		options = append(options, WithQuote(*c.Quote))
	}
	if c.MaxAddresses != 0 {
		options = append(options, WithMaxAddresses(c.MaxAddresses))
	}
	return options
}

// NewNormalizerFromYAML builds a normalizer from a configuration document.
// options are applied after the ones from the document.
func NewNormalizerFromYAML(b []byte, options ...NormalizerOptionFunc) (*Normalizer, error) {
	c, err := LoadConfig(b)
	if err != nil {
		return nil, err
	}
	return NewNormalizer(append(c.Options(), options...)...)
}

func NewNormalizerFromYAMLFile(path string, options ...NormalizerOptionFunc) (*Normalizer, error) {
	c, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	return NewNormalizer(append(c.Options(), options...)...)
}
