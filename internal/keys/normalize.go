// Package keys canonicalizes key-combination strings so that different spellings
// of the same chord ("Cmd+Shift+T", "⌘⇧T", "command-shift-t") compare equal.
package keys

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/hyperjump/kagi/internal/models"
)

// Modifiers in canonical output order.
var modifierOrder = [...]string{"ctrl", "alt", "shift", "cmd"}

// glyphs maps key symbols to canonical words. Each replacement is padded with
// separators so adjacent glyphs ("⌘⇧T") split into tokens.
var glyphs = strings.NewReplacer(
	"⌘", "+cmd+",
	"⌥", "+alt+",
	"⇧", "+shift+",
	"⌃", "+ctrl+",
	"↩", "+enter+",
	"⏎", "+enter+",
	"↵", "+enter+",
	"⌫", "+backspace+",
	"⌦", "+delete+",
	"⎋", "+esc+",
	"␣", "+space+",
	"⇥", "+tab+",
)

// aliases maps long-form modifier names to their short tokens.
// meta, super and win all canonicalize to cmd.
var aliases = map[string]string{
	"command": "cmd",
	"control": "ctrl",
	"option":  "alt",
	"opt":     "alt",
	"meta":    "cmd",
	"super":   "cmd",
	"win":     "cmd",
}

var separators = regexp.MustCompile(`[\s\-_+]+`)

// fold lowercases s under NFKC. Lowercasing can undo normalization (İ plus a
// combining mark), so it repeats until the text stops changing.
func fold(s string) string {
	s = norm.NFKC.String(s)
	for i := 0; i < 4; i++ {
		next := norm.NFKC.String(strings.ToLower(s))
		if next == s {
			break
		}
		s = next
	}
	return s
}

// Normalize returns the canonical form of a raw key combination: lowercase,
// glyph- and alias-free tokens joined by "+", modifiers first in the order
// ctrl, alt, shift, cmd, then the remaining keys in their original order.
// Normalize is idempotent; empty input yields "".
func Normalize(raw string) string {
	s := strings.TrimSpace(fold(raw))
	if s == "" {
		return ""
	}
	s = glyphs.Replace(s)
	s = separators.ReplaceAllString(s, "+")

	var mods [len(modifierOrder)]bool
	rest := make([]string, 0, 2)
	for _, tok := range strings.Split(s, "+") {
		if tok == "" {
			continue
		}
		if short, ok := aliases[tok]; ok {
			tok = short
		}
		if i := modifierIndex(tok); i >= 0 {
			mods[i] = true
			continue
		}
		rest = append(rest, tok)
	}

	out := make([]string, 0, len(modifierOrder)+len(rest))
	for i, on := range mods {
		if on {
			out = append(out, modifierOrder[i])
		}
	}
	out = append(out, rest...)
	return strings.Join(out, "+")
}

func modifierIndex(tok string) int {
	for i, m := range modifierOrder {
		if m == tok {
			return i
		}
	}
	return -1
}

// Equal reports whether a and b normalize to the same non-empty combination.
func Equal(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}

// ForPlatform returns the normalized combination of k for platform p.
func ForPlatform(k models.Keys, p models.Platform) string {
	return Normalize(k.For(p))
}
