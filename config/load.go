package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// LoadClients reads and decodes a clients.json document, stripping //
// and /* */ comments first.
func LoadClients(path string) (ClientsDocument, error) {
	var doc ClientsDocument
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(jsonc.ToJSON(raw), &doc); err != nil {
		return doc, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return doc, nil
}

// LoadSchema reads and decodes a plc-specification.json or
// robot-specification.json document.
func LoadSchema(path string) (SchemaDocument, error) {
	var doc SchemaDocument
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(jsonc.ToJSON(raw), &doc); err != nil {
		return doc, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return doc, nil
}
