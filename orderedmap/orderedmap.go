// Package orderedmap serializes output documents with an explicit key order
// so identical input always produces byte-identical JSON.
package orderedmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// KeyOrder maps a JSON path to the key order of the objects found there.
// The root is "", nested objects are "a.b", and array elements are "a[]".
// Keys missing from a table follow the listed ones in lexicographic order.
type KeyOrder map[string][]string

// Marshal encodes v as two-space indented JSON with a trailing newline,
// ordering object keys by order.
func Marshal(v any, order KeyOrder) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	out, err := json.MarshalIndent(reorder(generic, "", order), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(out, '\n'), nil
}

func reorder(v any, path string, order KeyOrder) any {
	switch t := v.(type) {
	case map[string]any:
		om := orderedmap.New[string, any]()
		for _, k := range orderKeys(t, order[path]) {
			om.Set(k, reorder(t[k], childPath(path, k), order))
		}
		return om
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = reorder(t[i], path+"[]", order)
		}
		return out
	}
	return v
}

func orderKeys(m map[string]any, listed []string) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(listed))
	for _, k := range listed {
		if _, ok := m[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func childPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
