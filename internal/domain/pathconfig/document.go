package pathconfig

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Format is the encoding of a path configuration file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "json"
	}
}

// FormatFor picks the format from a file name. Anything unrecognised is JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Document is a decoded path configuration.
type Document struct {
	Settings Settings
	Rules    []Rule
}

type rawRule struct {
	Patterns   []string       `json:"patterns" yaml:"patterns" toml:"patterns"`
	Properties map[string]any `json:"properties" yaml:"properties" toml:"properties"`
}

type rawDocument struct {
	Settings map[string]any `json:"settings" yaml:"settings" toml:"settings"`
	Rules    []rawRule      `json:"rules" yaml:"rules" toml:"rules"`
}

// Decode parses data in the given format.
func Decode(format Format, data []byte) (*Document, error) {
	var raw rawDocument

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	default:
		err = sonic.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s path configuration: %w", format, err)
	}
	if raw.Rules == nil && raw.Settings == nil {
		return nil, fmt.Errorf("failed to decode %s path configuration: no settings or rules", format)
	}

	doc := &Document{
		Settings: make(Settings, len(raw.Settings)),
		Rules:    make([]Rule, 0, len(raw.Rules)),
	}
	for k, v := range raw.Settings {
		doc.Settings[k] = stringify(v)
	}
	for i, r := range raw.Rules {
		if len(r.Patterns) == 0 {
			return nil, fmt.Errorf("failed to decode %s path configuration: rule %d has no patterns", format, i)
		}
		props := make(Properties, len(r.Properties))
		for k, v := range r.Properties {
			props[k] = stringify(v)
		}
		doc.Rules = append(doc.Rules, Rule{Patterns: r.Patterns, Properties: props})
	}
	return doc, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t)
	default:
		out, err := sonic.MarshalString(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return out
	}
}
