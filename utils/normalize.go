package utils

import (
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// LeafFunc transforms a single non-container JSON value.
type LeafFunc func(any) any

// MapLeaves walks a JSON-shaped value and applies leaf to every value that
// is not an object or an array. Objects and arrays are rebuilt, never
// mutated in place.
func MapLeaves(v any, leaf LeafFunc) any {
	switch node := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[k] = MapLeaves(child, leaf)
		}
		return out
	case []map[string]any:
		out := make([]any, len(node))
		for i, child := range node {
			out[i] = MapLeaves(child, leaf)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, child := range node {
			out[i] = MapLeaves(child, leaf)
		}
		return out
	case []string:
		out := make([]any, len(node))
		for i, child := range node {
			out[i] = leaf(child)
		}
		return out
	default:
		return leaf(v)
	}
}

// DecimalToFloat converts the store's exact decimal representations to
// float64. Values that fail to parse, and all other leaves, pass through.
func DecimalToFloat(v any) any {
	switch n := v.(type) {
	case attributevalue.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return v
}

// NormalizeNumbers makes a response body safe for JSON encoding.
func NormalizeNumbers(body any) any {
	return MapLeaves(body, DecimalToFloat)
}
