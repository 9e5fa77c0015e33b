package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format for exported rule sets.
type Format string

// Supported formats.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatUnknown Format = ""
)

// ParseFormat parses a format name or file extension. Empty input means JSON.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// FileName returns the conventional export file name, e.g.
// "contact_mapping.json".
func FileName(entity EntityType, f Format) string {
	return string(entity) + "_mapping" + f.Extension()
}

// flatSchema accepts exactly one level of string values.
const flatSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": {"type": "string"}
}`

var compileFlatSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("flat-mapping.json", strings.NewReader(flatSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("flat-mapping.json")
})

// Export serializes rs as a pretty-printed flat object whose key order is
// the rule order.
func Export(rs *RuleSet, f Format) ([]byte, error) {
	return ExportFlat(rs.Flat(), f)
}

// ExportFlat serializes a flat mapping.
func ExportFlat(flat FlatMapping, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(flat); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range flat {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Source},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Target},
			)
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}

// Import parses a JSON flat mapping. Anything other than a single object of
// string values fails with a *MalformedInputError naming the first bad key.
func Import(data []byte) (FlatMapping, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedInputError{Reason: "invalid JSON: " + err.Error(), Err: err}
	}

	schema, err := compileFlatSchema()
	if err != nil {
		return nil, fmt.Errorf("compile flat mapping schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			leaf := firstLeafCause(verr)
			return nil, &MalformedInputError{
				Key:    pointerKey(leaf.InstanceLocation),
				Reason: leaf.Message,
				Err:    err,
			}
		}
		return nil, &MalformedInputError{Reason: err.Error(), Err: err}
	}

	var flat FlatMapping
	if err := flat.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return flat, nil
}

// ImportYAML parses a YAML flat mapping with the same rules as Import.
func ImportYAML(data []byte) (FlatMapping, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedInputError{Reason: "invalid YAML: " + err.Error(), Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &MalformedInputError{Reason: "document is empty"}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &MalformedInputError{Reason: "expected a mapping at the top level"}
	}

	out := make(FlatMapping, 0, len(root.Content)/2)
	seen := make(map[string]struct{}, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode || k.ShortTag() != "!!str" {
			return nil, &MalformedInputError{Key: k.Value, Reason: fmt.Sprintf("line %d: key must be a string", k.Line)}
		}
		if _, dup := seen[k.Value]; dup {
			return nil, &MalformedInputError{Key: k.Value, Reason: "key appears more than once"}
		}
		seen[k.Value] = struct{}{}
		if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!str" {
			return nil, &MalformedInputError{Key: k.Value, Reason: fmt.Sprintf("line %d: value must be a string", v.Line)}
		}
		out = append(out, Pair{Source: k.Value, Target: v.Value})
	}
	return out, nil
}

// ImportAs dispatches on format.
func ImportAs(data []byte, f Format) (FlatMapping, error) {
	if f == FormatYAML {
		return ImportYAML(data)
	}
	return Import(data)
}

// ImportRuleSet imports data and builds a checked rule set for entity.
func ImportRuleSet(entity EntityType, data []byte, f Format) (*RuleSet, error) {
	flat, err := ImportAs(data, f)
	if err != nil {
		return nil, err
	}
	return FromFlat(entity, flat)
}

func firstLeafCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

// pointerKey turns a JSON pointer such as "/first_name" into the top-level
// key it names.
func pointerKey(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if i := strings.IndexByte(ptr, '/'); i >= 0 {
		ptr = ptr[:i]
	}
	ptr = strings.ReplaceAll(ptr, "~1", "/")
	return strings.ReplaceAll(ptr, "~0", "~")
}
