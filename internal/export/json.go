package export

// json.go — the resolved certification as JSON.
//
// The JSON form is derived from the YAML encoding, so both exports carry the
// same keys in the same shape. Flattening collapses the tree into a single
// object: map keys are joined with the separator and list elements use their
// index ("standards:NIST-800-53:AC-2:justifications:0:system").

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"masonry/internal/model"
)

// DefaultSeparator joins flattened keys when none is given.
const DefaultSeparator = ":"

// MarshalJSON encodes v as indented JSON. A non-empty sep flattens the
// document first.
func MarshalJSON(v any, sep string) ([]byte, error) {
	data, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	tree = stringKeys(tree)
	if sep != "" {
		flat := make(map[string]interface{})
		flatten(flat, "", sep, tree)
		tree = flat
	}
	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// WriteJSON serialises cert to <exportDir>/<name>.json and returns the path.
func WriteJSON(cert *model.Certification, exportDir, sep string) (string, error) {
	if cert.Name == "" {
		return "", fmt.Errorf("certification has no name")
	}
	data, err := MarshalJSON(cert, sep)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", cert.Name, err)
	}
	path := filepath.Join(exportDir, cert.Name+".json")
	if err := writeBytes(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// stringKeys rewrites every map[interface{}]interface{} yaml.v3 produces for
// non-string keys (numbered narrative sections) into map[string]interface{}.
func stringKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, e := range t {
			t[k] = stringKeys(e)
		}
		return t
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = stringKeys(e)
		}
		return m
	case []interface{}:
		for i, e := range t {
			t[i] = stringKeys(e)
		}
		return t
	}
	return v
}

func flatten(out map[string]interface{}, prefix, sep string, v interface{}) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + sep + k
	}
	switch t := v.(type) {
	case map[string]interface{}:
		if len(t) == 0 && prefix != "" {
			out[prefix] = t
			return
		}
		for k, e := range t {
			flatten(out, join(k), sep, e)
		}
	case []interface{}:
		if len(t) == 0 && prefix != "" {
			out[prefix] = t
			return
		}
		for i, e := range t {
			flatten(out, join(strconv.Itoa(i)), sep, e)
		}
	default:
		out[prefix] = v
	}
}
