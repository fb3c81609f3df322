// Package frontmatter splits and parses the YAML metadata header carried by
// every post source file.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

// Style captures the newline shape of a document so callers that rewrite
// files (the post scaffolder) can preserve it.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Split separates YAML front matter (`---` delimited) from the Markdown body.
//
// If the document does not start with a front matter delimiter, had is false
// and body is the full input.
func Split(content []byte) (meta []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)

	nl := style.Newline
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	metaStart := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[metaStart:], closeLine) {
		bodyStart := metaStart + len(closeLine)
		return []byte{}, content[bodyStart:], true, style, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[metaStart:], closeSeq)
	if idx < 0 {
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	metaEnd := metaStart + idx + len(nl)
	bodyStart := metaStart + idx + len(closeSeq)
	return content[metaStart:metaEnd], content[bodyStart:], true, style, nil
}

// Join reassembles a document from raw front matter and body.
//
// If had is false, Join returns body as-is.
func Join(meta []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	open := []byte("---" + nl)
	closing := []byte("---" + nl)

	out := make([]byte, 0, len(open)+len(meta)+len(closing)+len(body))
	out = append(out, open...)
	out = append(out, meta...)
	out = append(out, closing...)
	out = append(out, body...)
	return out
}

// ParseYAML parses raw YAML front matter (without --- delimiters) into a map.
func ParseYAML(meta []byte) (map[string]any, error) {
	if len(meta) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Decode unmarshals raw YAML front matter into a typed destination.
func Decode(meta []byte, dst any) error {
	if len(meta) == 0 {
		return nil
	}
	return yaml.Unmarshal(meta, dst)
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			newline = "\n"
			break
		}
	}

	hasTrailingNewline := len(content) > 0 && (content[len(content)-1] == '\n')

	return Style{
		Newline:            newline,
		HasTrailingNewline: hasTrailingNewline,
	}
}
