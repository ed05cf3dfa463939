package importer

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/hyperjump/kagi/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func parseJSON(content []byte) (*catalog, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return &catalog{}, nil
	}
	if trimmed[0] == '[' {
		var list []*models.Shortcut
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode JSON shortcuts: %w", err)
		}
		return &catalog{Shortcuts: list}, nil
	}
	var cat catalog
	if err := json.Unmarshal(trimmed, &cat); err != nil {
		return nil, fmt.Errorf("decode JSON catalog: %w", err)
	}
	return &cat, nil
}
