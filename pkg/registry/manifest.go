package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"sigs.k8s.io/yaml"
)

//go:embed manifest.yaml
var manifestYAML []byte

//go:embed schema.json
var manifestSchema []byte

type manifest struct {
	Plugins []PluginDescriptor `json:"plugins"`
}

// loadManifest parses and schema-validates the embedded plugin manifest.
// The manifest ships inside the binary, so a failure here is a build
// defect rather than a user error.
func loadManifest() (*manifest, error) {
	raw, err := yaml.YAMLToJSON(manifestYAML)
	if err != nil {
		return nil, fmt.Errorf("parse plugin manifest: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(manifestSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("validate plugin manifest: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("invalid plugin manifest: %s", strings.Join(msgs, "; "))
	}

	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode plugin manifest: %w", err)
	}
	for i := range m.Plugins {
		d := &m.Plugins[i]
		if d.Kind == KindCompression && d.LevelRange == nil {
			return nil, fmt.Errorf("plugin %s: compression plugins need a level range", d.Name)
		}
	}
	return &m, nil
}
