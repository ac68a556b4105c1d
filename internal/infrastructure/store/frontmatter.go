package store

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"readvault/internal/domain"
	"readvault/internal/infrastructure/normalize"
)

const delimiter = "---"

// Encode renders a document as a YAML header between "---" delimiters
// followed by a blank line and the body.
func Encode(doc domain.Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc.Header); err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}

	buf.WriteString(delimiter + "\n")
	if doc.Body != "" {
		buf.WriteString("\n")
		buf.WriteString(doc.Body)
		if !strings.HasSuffix(doc.Body, "\n") {
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}

// Decode parses a document file. Header text is cleaned of stray
// control characters before parsing; hand-edited files accumulate them.
// Unknown header keys survive on Header.Extra. A document without an
// identifier is unusable, so that is a parse error too.
func Decode(data []byte) (domain.Document, error) {
	text := strings.TrimPrefix(string(data), "\uFEFF")

	rest, ok := strings.CutPrefix(text, delimiter+"\n")
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: missing opening delimiter", domain.ErrHeaderParse)
	}

	headText, body, found := strings.Cut(rest, "\n"+delimiter+"\n")
	if !found {
		trimmed, closed := strings.CutSuffix(rest, "\n"+delimiter)
		if !closed {
			return domain.Document{}, fmt.Errorf("%w: missing closing delimiter", domain.ErrHeaderParse)
		}
		headText, body = trimmed, ""
	}

	var header domain.Header
	if err := yaml.Unmarshal([]byte(normalize.CleanControl(headText)), &header); err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", domain.ErrHeaderParse, err)
	}
	if strings.TrimSpace(header.ID) == "" {
		return domain.Document{}, fmt.Errorf("%w: missing identifier", domain.ErrHeaderParse)
	}

	body = strings.TrimPrefix(body, "\n")
	return domain.Document{Header: header, Body: body}, nil
}
