// Package yamlutil wraps YAML parsing to isolate the external dependency.
// This allows swapping the underlying YAML library without modifying callers.
package yamlutil

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrUnsupported    = errors.New("yamlutil: unsupported node")
)

// Pair is one entry of a YAML mapping decoded by UnmarshalOrdered.
type Pair struct {
	Key   string
	Value any
}

func validateInput(data []byte, v any, limit int) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > limit {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), limit)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

func Unmarshal(data []byte, v any) error {
	return UnmarshalWithLimit(data, v, MaxInputSize)
}

// UnmarshalWithLimit is Unmarshal with a caller-chosen size ceiling, for
// inputs such as bibliography files that legitimately exceed MaxInputSize.
func UnmarshalWithLimit(data []byte, v any, limit int) error {
	if err := validateInput(data, v, limit); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v, MaxInputSize); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalOrdered decodes data into generic values while keeping mapping
// order: mappings become []Pair, sequences []any, scalars their Go value.
func UnmarshalOrdered(data []byte) (any, error) {
	var raw any
	if err := validateInput(data, &raw, MaxInputSize); err != nil {
		return nil, err
	}
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return toOrdered(raw), nil
}

// UnmarshalOrderedText is UnmarshalOrdered with every scalar kept as its
// source text, so "1.10" and "007" are not coerced to numbers. Nulls become
// "". Merge keys and complex keys return ErrUnsupported.
func UnmarshalOrderedText(data []byte) (any, error) {
	if err := validateInput(data, &data, MaxInputSize); err != nil {
		return nil, err
	}
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	if len(file.Docs) != 1 || file.Docs[0].Body == nil {
		return nil, ErrNilData
	}
	return textValue(file.Docs[0].Body, make(map[string]ast.Node))
}

func textValue(n ast.Node, anchors map[string]ast.Node) (any, error) {
	switch t := n.(type) {
	case *ast.MappingNode:
		pairs := make([]Pair, 0, len(t.Values))
		for _, mv := range t.Values {
			p, err := textPair(mv, anchors)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, p)
		}
		return pairs, nil
	case *ast.MappingValueNode:
		p, err := textPair(t, anchors)
		if err != nil {
			return nil, err
		}
		return []Pair{p}, nil
	case *ast.SequenceNode:
		out := make([]any, 0, len(t.Values))
		for _, v := range t.Values {
			elem, err := textValue(v, anchors)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	case *ast.AnchorNode:
		anchors[t.Name.String()] = t.Value
		return textValue(t.Value, anchors)
	case *ast.AliasNode:
		target, ok := anchors[t.Value.String()]
		if !ok {
			return nil, fmt.Errorf("%w: unknown alias %s", ErrUnsupported, t.Value.String())
		}
		return textValue(target, anchors)
	case *ast.TagNode:
		return textValue(t.Value, anchors)
	case *ast.NullNode:
		return "", nil
	case *ast.StringNode:
		return t.Value, nil
	case *ast.LiteralNode:
		return t.Value.Value, nil
	case *ast.IntegerNode:
		return t.Token.Value, nil
	case *ast.FloatNode:
		return t.Token.Value, nil
	case *ast.BoolNode:
		return t.Token.Value, nil
	case *ast.InfinityNode:
		return t.Token.Value, nil
	case *ast.NanNode:
		return t.Token.Value, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, n.Type())
}

func textPair(mv *ast.MappingValueNode, anchors map[string]ast.Node) (Pair, error) {
	if mv.Key.IsMergeKey() {
		return Pair{}, fmt.Errorf("%w: merge key", ErrUnsupported)
	}
	key, err := textValue(mv.Key, anchors)
	if err != nil {
		return Pair{}, err
	}
	name, ok := key.(string)
	if !ok {
		return Pair{}, fmt.Errorf("%w: non-scalar key", ErrUnsupported)
	}
	value, err := textValue(mv.Value, anchors)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Key: name, Value: value}, nil
}

func toOrdered(v any) any {
	switch t := v.(type) {
	case yaml.MapSlice:
		pairs := make([]Pair, 0, len(t))
		for _, item := range t {
			pairs = append(pairs, Pair{Key: fmt.Sprint(item.Key), Value: toOrdered(item.Value)})
		}
		return pairs
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]Pair, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, Pair{Key: k, Value: toOrdered(t[k])})
		}
		return pairs
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = toOrdered(item)
		}
		return out
	default:
		return v
	}
}

func Marshal(v any) ([]byte, error) {
	result, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return result, nil
}

// MarshalOrdered encodes pairs as a single YAML mapping in the given order.
func MarshalOrdered(pairs []Pair) ([]byte, error) {
	ms := make(yaml.MapSlice, 0, len(pairs))
	for _, p := range pairs {
		ms = append(ms, yaml.MapItem{Key: p.Key, Value: p.Value})
	}
	return Marshal(ms)
}
