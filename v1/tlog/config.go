package tlog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LogType tells the logger which kind of runtime it writes for. It is carried
// in the configuration and exposed through Inspect; the dispatcher does not
// branch on it.
type LogType string

const (
	TypeClient LogType = "client"
	TypeServer LogType = "server"
)

// DefaultEnvPrefix is the environment variable prefix used by FromEnv when
// none is given.
const DefaultEnvPrefix = "TLOG"

// Options holds the formatting and payload settings of a resolved
// configuration.
type Options struct {
	// Type records the target runtime.
	// Default: "client"
	Type LogType `yaml:"type" json:"type"`

	// Style is a CSS-like property map applied to every message. Keys are
	// written in camelCase and rendered in kebab-case.
	// Default: empty (no styling)
	Style map[string]string `yaml:"style" json:"style"`

	// PrimitivesAllowedInTemplateString lists the kinds that are interpolated
	// into the message text. Values of other kinds only reach the payload.
	// Default: bigint, boolean, number, string
	PrimitivesAllowedInTemplateString []Kind `yaml:"primitivesAllowedInTemplateString" json:"primitivesAllowedInTemplateString"`

	// SkipPrimitivesIncludedInMessage drops values already shown inline from
	// the multi-value payload.
	SkipPrimitivesIncludedInMessage bool `yaml:"skipPrimitivesIncludedInMessage" json:"skipPrimitivesIncludedInMessage"`

	// ExcludeOutputObject disables the payload entirely.
	ExcludeOutputObject bool `yaml:"excludeOutputObject" json:"excludeOutputObject"`

	// FlattenOutputObject turns nested payloads into a single-level map.
	FlattenOutputObject bool `yaml:"flattenOutputObject" json:"flattenOutputObject"`

	// TableIndexPrefix is prepended to every flattened key.
	TableIndexPrefix string `yaml:"tableIndexPrefix" json:"tableIndexPrefix"`

	// TableIndexDelimeter joins the path segments of flattened keys.
	// Default: "."
	TableIndexDelimeter string `yaml:"tableIndexDelimeter" json:"tableIndexDelimeter"`
}

// LoggerConfig is a fully resolved configuration. Values returned by
// Snapshot and Inspect are copies and may be modified freely.
type LoggerConfig struct {
	Enabled  bool    `yaml:"enabled" json:"enabled"`
	Prefix   string  `yaml:"prefix" json:"prefix"`
	MinLevel Level   `yaml:"minLevel" json:"minLevel"`
	Options  Options `yaml:"options" json:"options"`
}

// Config is a partial configuration. A nil field leaves the current value
// untouched; for Style and PrimitivesAllowedInTemplateString a nil map or
// slice means "not supplied", and a supplied one replaces the current value
// wholesale.
type Config struct {
	Enabled  *bool          `yaml:"enabled" mapstructure:"enabled"`
	Prefix   *string        `yaml:"prefix" mapstructure:"prefix"`
	MinLevel *Level         `yaml:"minLevel" mapstructure:"minLevel"`
	Options  *OptionsConfig `yaml:"options" mapstructure:"options"`
}

// OptionsConfig is the partial form of Options. Each supplied field replaces
// the current one; unsupplied siblings are kept.
type OptionsConfig struct {
	Type                              *LogType          `yaml:"type" mapstructure:"type"`
	Style                             map[string]string `yaml:"style" mapstructure:"style"`
	PrimitivesAllowedInTemplateString []Kind            `yaml:"primitivesAllowedInTemplateString" mapstructure:"primitivesAllowedInTemplateString"`
	SkipPrimitivesIncludedInMessage   *bool             `yaml:"skipPrimitivesIncludedInMessage" mapstructure:"skipPrimitivesIncludedInMessage"`
	ExcludeOutputObject               *bool             `yaml:"excludeOutputObject" mapstructure:"excludeOutputObject"`
	FlattenOutputObject               *bool             `yaml:"flattenOutputObject" mapstructure:"flattenOutputObject"`
	TableIndexPrefix                  *string           `yaml:"tableIndexPrefix" mapstructure:"tableIndexPrefix"`
	TableIndexDelimeter               *string           `yaml:"tableIndexDelimeter" mapstructure:"tableIndexDelimeter"`
}

// Ptr returns a pointer to v. It keeps partial Config literals short:
//
//	tlog.Config{Enabled: tlog.Ptr(true), MinLevel: tlog.Ptr(tlog.LevelWarn)}
func Ptr[T any](v T) *T {
	return &v
}

// DefaultConfig returns the configuration a logger starts from before any
// partial Config is applied.
func DefaultConfig() LoggerConfig {
	return LoggerConfig{
		Enabled:  false,
		Prefix:   "",
		MinLevel: LevelDebug,
		Options: Options{
			Type:                              TypeClient,
			Style:                             map[string]string{},
			PrimitivesAllowedInTemplateString: []Kind{KindBigint, KindBoolean, KindNumber, KindString},
			TableIndexDelimeter:               ".",
		},
	}
}

func (c LoggerConfig) clone() LoggerConfig {
	c.Options.Style = maps.Clone(c.Options.Style)
	c.Options.PrimitivesAllowedInTemplateString = slices.Clone(c.Options.PrimitivesAllowedInTemplateString)
	return c
}

// merge applies the supplied fields of partial onto base one level deep and
// validates the result. base is not modified.
func merge(base LoggerConfig, partial Config) (LoggerConfig, error) {
	out := base.clone()

	if partial.Enabled != nil {
		out.Enabled = *partial.Enabled
	}
	if partial.Prefix != nil {
		out.Prefix = *partial.Prefix
	}
	if partial.MinLevel != nil {
		if !partial.MinLevel.Valid() {
			return LoggerConfig{}, fmt.Errorf("%w: invalid minLevel %d", ErrConfiguration, int(*partial.MinLevel))
		}
		out.MinLevel = *partial.MinLevel
	}

	if o := partial.Options; o != nil {
		if o.Type != nil {
			switch *o.Type {
			case TypeClient, TypeServer:
				out.Options.Type = *o.Type
			default:
				return LoggerConfig{}, fmt.Errorf("%w: unknown log type %q", ErrConfiguration, *o.Type)
			}
		}
		if o.Style != nil {
			out.Options.Style = maps.Clone(o.Style)
		}
		if o.PrimitivesAllowedInTemplateString != nil {
			kinds, err := normalizeKinds(o.PrimitivesAllowedInTemplateString)
			if err != nil {
				return LoggerConfig{}, err
			}
			out.Options.PrimitivesAllowedInTemplateString = kinds
		}
		if o.SkipPrimitivesIncludedInMessage != nil {
			out.Options.SkipPrimitivesIncludedInMessage = *o.SkipPrimitivesIncludedInMessage
		}
		if o.ExcludeOutputObject != nil {
			out.Options.ExcludeOutputObject = *o.ExcludeOutputObject
		}
		if o.FlattenOutputObject != nil {
			out.Options.FlattenOutputObject = *o.FlattenOutputObject
		}
		if o.TableIndexPrefix != nil {
			out.Options.TableIndexPrefix = *o.TableIndexPrefix
		}
		if o.TableIndexDelimeter != nil {
			out.Options.TableIndexDelimeter = *o.TableIndexDelimeter
		}
	}

	if out.Options.Style == nil {
		out.Options.Style = map[string]string{}
	}
	return out, nil
}

// normalizeKinds validates a primitive set and removes repeated entries,
// keeping the first occurrence of each.
func normalizeKinds(kinds []Kind) ([]Kind, error) {
	out := make([]Kind, 0, len(kinds))
	seen := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		if !k.Valid() {
			return nil, fmt.Errorf("%w: unknown primitive kind %q", ErrConfiguration, k)
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out, nil
}

// LoadConfig reads a partial configuration from a YAML file. Unknown keys are
// rejected. An empty file yields an empty Config.
//
// Example file:
//
//	enabled: true
//	prefix: "[api]"
//	minLevel: warn
//	options:
//	  style:
//	    color: red
//	  flattenOutputObject: true
//	  tableIndexPrefix: "@"
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: reading %s: %v", ErrConfiguration, path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a partial configuration from YAML.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("%w: decoding yaml: %v", ErrConfiguration, err)
	}
	return cfg, nil
}

// ConfigFromMap decodes a partial configuration from a generic map such as
// the result of parsing JSON or a section of a larger config tree. Keys use
// the same camelCase names as the YAML form; unknown keys are rejected.
func ConfigFromMap(m map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.TextUnmarshallerHookFunc(),
		ErrorUnused: true,
		Result:      &cfg,
		TagName:     "mapstructure",
	})
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := dec.Decode(m); err != nil {
		return Config{}, fmt.Errorf("%w: decoding map: %v", ErrConfiguration, err)
	}
	return cfg, nil
}

// envConfig is the environment form of Config. Level and kind names are read
// as plain strings and validated afterwards.
type envConfig struct {
	Enabled  *bool
	Prefix   *string
	MinLevel *string `split_words:"true"`
	Options  envOptions
}

type envOptions struct {
	Type                              *string
	Style                             map[string]string
	PrimitivesAllowedInTemplateString []string `split_words:"true"`
	SkipPrimitivesIncludedInMessage   *bool    `split_words:"true"`
	ExcludeOutputObject               *bool    `split_words:"true"`
	FlattenOutputObject               *bool    `split_words:"true"`
	TableIndexPrefix                  *string  `split_words:"true"`
	TableIndexDelimeter               *string  `split_words:"true"`
}

func (o envOptions) empty() bool {
	return o.Type == nil && o.Style == nil && o.PrimitivesAllowedInTemplateString == nil &&
		o.SkipPrimitivesIncludedInMessage == nil && o.ExcludeOutputObject == nil &&
		o.FlattenOutputObject == nil && o.TableIndexPrefix == nil && o.TableIndexDelimeter == nil
}

// FromEnv overlays environment variables onto cfg. Only variables that are set
// replace fields; everything else in cfg is left as it is. With the default
// prefix the variables are:
//
//	TLOG_ENABLED                                    true|false
//	TLOG_PREFIX                                     string
//	TLOG_MIN_LEVEL                                  level name or alias
//	TLOG_OPTIONS_TYPE                               client|server
//	TLOG_OPTIONS_STYLE                              color:red,fontWeight:bold
//	TLOG_OPTIONS_PRIMITIVES_ALLOWED_IN_TEMPLATE_STRING  number,string
//	TLOG_OPTIONS_SKIP_PRIMITIVES_INCLUDED_IN_MESSAGE    true|false
//	TLOG_OPTIONS_EXCLUDE_OUTPUT_OBJECT              true|false
//	TLOG_OPTIONS_FLATTEN_OUTPUT_OBJECT              true|false
//	TLOG_OPTIONS_TABLE_INDEX_PREFIX                 string
//	TLOG_OPTIONS_TABLE_INDEX_DELIMETER              string
func FromEnv(prefix string, cfg *Config) error {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	var env envConfig
	if err := envconfig.Process(prefix, &env); err != nil {
		return fmt.Errorf("%w: reading environment: %v", ErrConfiguration, err)
	}

	if env.Enabled != nil {
		cfg.Enabled = env.Enabled
	}
	if env.Prefix != nil {
		cfg.Prefix = env.Prefix
	}
	if env.MinLevel != nil {
		lvl, err := ParseLevel(*env.MinLevel)
		if err != nil {
			return err
		}
		cfg.MinLevel = &lvl
	}

	o := env.Options
	if o.empty() {
		return nil
	}
	if cfg.Options == nil {
		cfg.Options = &OptionsConfig{}
	}
	if o.Type != nil {
		t := LogType(*o.Type)
		cfg.Options.Type = &t
	}
	if o.Style != nil {
		cfg.Options.Style = o.Style
	}
	if o.PrimitivesAllowedInTemplateString != nil {
		kinds := make([]Kind, len(o.PrimitivesAllowedInTemplateString))
		for i, k := range o.PrimitivesAllowedInTemplateString {
			kinds[i] = Kind(k)
		}
		cfg.Options.PrimitivesAllowedInTemplateString = kinds
	}
	if o.SkipPrimitivesIncludedInMessage != nil {
		cfg.Options.SkipPrimitivesIncludedInMessage = o.SkipPrimitivesIncludedInMessage
	}
	if o.ExcludeOutputObject != nil {
		cfg.Options.ExcludeOutputObject = o.ExcludeOutputObject
	}
	if o.FlattenOutputObject != nil {
		cfg.Options.FlattenOutputObject = o.FlattenOutputObject
	}
	if o.TableIndexPrefix != nil {
		cfg.Options.TableIndexPrefix = o.TableIndexPrefix
	}
	if o.TableIndexDelimeter != nil {
		cfg.Options.TableIndexDelimeter = o.TableIndexDelimeter
	}
	return nil
}
