package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// printer renders command results in the format chosen with --output.
type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case "text", "json", "yaml":
		return &printer{w: w, format: format}, nil
	default:
		return nil, fmt.Errorf("invalid output format %q: want text, json or yaml", format)
	}
}

// print writes v. In text mode the text callback renders it instead.
func (p *printer) print(v any, text func(w io.Writer)) error {
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		return writeYAML(p.w, v)
	default:
		text(p.w)
		return nil
	}
}

// writeYAML renders v as block YAML with the same keys its JSON encoding
// uses. Key order follows the struct.
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

// blockStyle clears the flow and quoting styles the JSON source left on every
// node.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}
