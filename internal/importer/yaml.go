package importer

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/kagi/internal/models"
)

func parseYAML(content []byte) (*catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("decode YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return &catalog{}, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var list []*models.Shortcut
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("decode YAML shortcuts: %w", err)
		}
		return &catalog{Shortcuts: list}, nil
	}
	var cat catalog
	if err := root.Decode(&cat); err != nil {
		return nil, fmt.Errorf("decode YAML catalog: %w", err)
	}
	return &cat, nil
}
