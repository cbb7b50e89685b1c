package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyDocument = errors.New("document has no root node")
	ErrNodeNotFound  = errors.New("node not found")
)

// Parse decodes a scene document. JSON is detected by a leading '{';
// anything else is read as YAML. A bare node (no "document" wrapper) is
// accepted as the root.
func Parse(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}

	jsonData := trimmed
	if trimmed[0] != '{' {
		converted, err := yamlToJSON(trimmed)
		if err != nil {
			return nil, fmt.Errorf("decode yaml document: %w", err)
		}
		jsonData = converted
	}

	var doc Document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	if doc.Root == nil {
		var node RawNode
		if err := json.Unmarshal(jsonData, &node); err != nil {
			return nil, fmt.Errorf("decode node: %w", err)
		}
		if node.ID == "" {
			return nil, ErrEmptyDocument
		}
		doc.Root = &node
	}

	return &doc, nil
}

// Read parses a document from r.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(data)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(normalizeYAML(v))
}

// normalizeYAML rewrites map[interface{}]interface{} values, which
// encoding/json cannot marshal, into string-keyed maps.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}

// Find returns the node with the given id anywhere in the tree.
func (d *Document) Find(id string) (*RawNode, error) {
	if d.Root == nil {
		return nil, ErrEmptyDocument
	}
	if n := findNode(d.Root, id); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}

func findNode(n *RawNode, id string) *RawNode {
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		if found := findNode(c, id); found != nil {
			return found
		}
	}
	return nil
}

// Asset returns the pre-exported renditions for a node, if the host sent any.
func (d *Document) Asset(id string) (Asset, bool) {
	a, ok := d.Assets[id]
	return a, ok
}

// NodeSummary is the short description of a node sent with selection events.
type NodeSummary struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Type NodeType `json:"type"`
}

// SelectedNodes resolves the selection ids against the tree, skipping ids
// that no longer exist.
func (d *Document) SelectedNodes() []NodeSummary {
	out := make([]NodeSummary, 0, len(d.Selection))
	for _, id := range d.Selection {
		n, err := d.Find(id)
		if err != nil {
			continue
		}
		out = append(out, NodeSummary{ID: n.ID, Name: n.Name, Type: n.Type})
	}
	return out
}
