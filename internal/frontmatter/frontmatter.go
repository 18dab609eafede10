// Package frontmatter reads and writes markdown files that carry YAML
// frontmatter between --- delimiters.
package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const delim = "---\n"

// Parse splits a markdown document into its frontmatter (raw YAML bytes) and
// body. The document must begin with "---\n"; the closing "---" line ends the
// frontmatter block.
func Parse(data []byte) (frontmatter []byte, body []byte, err error) {
	if !bytes.HasPrefix(data, []byte(delim)) {
		return nil, nil, fmt.Errorf("frontmatter: missing opening --- delimiter")
	}
	rest := data[len(delim):]
	var idx int
	if bytes.HasPrefix(rest, []byte("---")) {
		idx = 0
	} else if idx = bytes.Index(rest, []byte("\n---")); idx < 0 {
		return nil, nil, fmt.Errorf("frontmatter: missing closing --- delimiter")
	} else {
		idx++
	}
	fm := rest[:idx]
	tail := rest[idx+3:]
	if len(tail) > 0 && tail[0] == '\n' {
		tail = tail[1:]
	}
	return fm, tail, nil
}

// Body returns data without its frontmatter block. Documents without
// frontmatter are returned unchanged.
func Body(data []byte) []byte {
	if _, body, err := Parse(data); err == nil {
		return body
	}
	return data
}

// Write marshals v as YAML frontmatter, two-space indented, and appends body.
func Write(v any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(delim)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	buf.WriteString(delim)
	buf.WriteString(body)
	return buf.Bytes(), nil
}
