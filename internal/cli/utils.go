// Package cli provides output formatting for the kagi command line.
package cli

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/hyperjump/kagi/internal/models"
	"github.com/hyperjump/kagi/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes a search response to w in the given format.
// platform selects which key combination text output shows; empty shows the
// first available one.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, platform models.Platform, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, response)
	}
	mode := response.Mode
	if response.Fallback {
		mode += ", keyword fallback"
	}
	fmt.Fprintf(w, "\nFound %d results in %dms (%s)\n\n", response.Total, response.QueryTime, mode)
	for i, r := range response.Results {
		writeOneResult(w, i+1, r, platform)
	}
	if len(response.Results) == 0 && len(response.Suggestions) > 0 {
		fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(response.Suggestions, ", "))
	}
	return nil
}

func writeOneResult(w io.Writer, rank int, r *models.ScoredShortcut, platform models.Platform) {
	s := r.Shortcut
	keys := s.Keys.Resolve(platform)
	if keys == "" {
		keys = "-"
	}
	fmt.Fprintf(w, "%2d. %-24s %s", rank, keys, utils.Truncate(s.Action, 60))
	fmt.Fprintf(w, "  [%s", s.App)
	if s.Context != "" {
		fmt.Fprintf(w, ", %s", s.Context)
	}
	fmt.Fprint(w, "]")
	if r.Tier != "" {
		fmt.Fprintf(w, "  %.2f %s", r.Score, r.Tier)
	}
	fmt.Fprintf(w, "\n    id: %s\n", s.ID)
}

// WriteShortcut writes a single shortcut with every platform's keys.
func WriteShortcut(w io.Writer, s *models.Shortcut, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, s)
	}
	fmt.Fprintf(w, "ID:       %s\n", s.ID)
	fmt.Fprintf(w, "App:      %s\n", s.App)
	fmt.Fprintf(w, "Action:   %s\n", s.Action)
	for _, p := range models.Platforms {
		if k := s.Keys.For(p); k != "" {
			fmt.Fprintf(w, "%-9s %s\n", strings.ToUpper(string(p[:1]))+string(p[1:])+":", k)
		}
	}
	if s.Context != "" {
		fmt.Fprintf(w, "Context:  %s\n", s.Context)
	}
	if s.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", s.Category)
	}
	if len(s.Tags) > 0 {
		fmt.Fprintf(w, "Tags:     %s\n", strings.Join(s.Tags, ", "))
	}
	if s.Source != nil && s.Source.URL != "" {
		fmt.Fprintf(w, "Source:   %s (%s, confidence %.2f)\n", s.Source.URL, s.Source.Kind, s.Source.Confidence)
	}
	return nil
}

// WriteExplanation writes an explanation of the shortcut with the given ID.
func WriteExplanation(w io.Writer, resp *models.ExplainResponse, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, resp)
	}
	_, err := fmt.Fprintln(w, resp.Explanation)
	return err
}
