package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nebari-dev/modelconfig/internal/models"
	"github.com/nebari-dev/modelconfig/internal/valuetype"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// fileEntry is one key of an import/export document. A document maps keys
// either to {type, value} objects or to bare values whose type is inferred.
type fileEntry struct {
	Key   string
	Type  string
	Value any
}

// formatFor picks yaml or toml from an explicit format or a file extension.
func formatFor(format, path string) (string, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			format = "toml"
		default:
			format = "yaml"
		}
	}
	switch format {
	case "yaml", "yml":
		return "yaml", nil
	case "toml":
		return "toml", nil
	}
	return "", fmt.Errorf("unsupported format %q (supported: yaml, toml)", format)
}

// parseEntries decodes an import document, sorted by key.
func parseEntries(data []byte, format string) ([]fileEntry, error) {
	doc := map[string]any{}
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]fileEntry, 0, len(keys))
	for _, k := range keys {
		e, err := toEntry(k, doc[k])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func toEntry(key string, raw any) (fileEntry, error) {
	if m, ok := raw.(map[string]any); ok && isExplicit(m) {
		tag, err := valuetype.Parse(fmt.Sprint(m["type"]))
		if err != nil {
			return fileEntry{}, fmt.Errorf("key %q: %w", key, err)
		}
		return fileEntry{Key: key, Type: tag.String(), Value: normalize(m["value"])}, nil
	}
	tag, value := infer(raw)
	return fileEntry{Key: key, Type: tag.String(), Value: value}, nil
}

// isExplicit reports whether m is a {type, value} object rather than JSON data.
func isExplicit(m map[string]any) bool {
	if _, ok := m["type"].(string); !ok {
		return false
	}
	for k := range m {
		if k != "type" && k != "value" {
			return false
		}
	}
	return true
}

func infer(raw any) (valuetype.Type, any) {
	switch v := raw.(type) {
	case bool:
		return valuetype.Bool, v
	case int, int64, uint64:
		return valuetype.Int, v
	case float64:
		return valuetype.Float, v
	case time.Time:
		return valuetype.Date, v
	case toml.LocalDate, toml.LocalDateTime:
		return valuetype.Date, fmt.Sprint(v)
	case []any:
		return valuetype.Array, normalize(v)
	case map[string]any:
		return valuetype.JSON, normalize(v)
	case nil:
		return valuetype.String, ""
	}
	return valuetype.String, fmt.Sprint(raw)
}

// normalize rewrites decoder-specific scalars inside nested data into the
// shapes produced by encoding/json.
func normalize(raw any) any {
	switch v := raw.(type) {
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = normalize(e)
		}
		return out
	case toml.LocalDate, toml.LocalDateTime, toml.LocalTime:
		return fmt.Sprint(v)
	}
	return raw
}

// exportEntries converts stored entries into an export document.
func exportEntries(entries []*models.Configuration, decode func(*models.Configuration) (valuetype.Value, error)) ([]fileEntry, error) {
	out := make([]fileEntry, 0, len(entries))
	for _, e := range entries {
		v, err := decode(e)
		if err != nil {
			return nil, err
		}
		out = append(out, fileEntry{Key: e.Key, Type: e.Type.String(), Value: e.Type.Storable(v)})
	}
	return out, nil
}

// encodeEntries renders entries as a yaml or toml document keyed by entry key.
// Absent values are written without a value field.
func encodeEntries(entries []fileEntry, format string) ([]byte, error) {
	doc := make(map[string]map[string]any, len(entries))
	for _, e := range entries {
		item := map[string]any{"type": e.Type}
		if e.Value != nil {
			item["value"] = e.Value
		}
		doc[e.Key] = item
	}

	var buf bytes.Buffer
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return buf.Bytes(), nil
}
