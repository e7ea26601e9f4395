// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package textutil holds the small text helpers shared by handlers: slugs,
// excerpts and human-readable times and counts.
package textutil

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

// slugSuffixLen is the length of the random suffix appended to topic slugs.
const slugSuffixLen = 6

// Slugify lowercases text, folds accented letters to ASCII, and joins the
// remaining words with hyphens.
func Slugify(text string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(strings.TrimSpace(text)),
	)
	if err != nil {
		folded = strings.ToLower(text)
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingSep = true
		}
		// anything else is dropped without separating words
	}
	return b.String()
}

// GenerateSlug returns Slugify(title) followed by a random suffix so that
// topics with the same title get distinct URLs.
func GenerateSlug(title string) (string, error) {
	suffix, err := randomBase36(slugSuffixLen)
	if err != nil {
		return "", err
	}

	base := Slugify(title)
	if base == "" {
		return suffix, nil
	}
	return base + "-" + suffix, nil
}

// randomBase36 returns n random characters from [0-9a-z].
func randomBase36(n int) (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate slug suffix: %w", err)
	}
	num := binary.BigEndian.Uint64(buf[:])

	result := make([]byte, n)
	for i := range result {
		result[i] = base36Chars[num%36]
		num /= 36
	}
	return string(result), nil
}

// Truncate shortens text to at most maxRunes runes, appending "..." when it
// cut something off.
func Truncate(text string, maxRunes int) string {
	r := []rune(text)
	if len(r) <= maxRunes {
		return text
	}
	return strings.TrimSpace(string(r[:maxRunes])) + "..."
}

// Excerpt cuts text to maxRunes without an ellipsis.
func Excerpt(text string, maxRunes int) string {
	r := []rune(text)
	if len(r) <= maxRunes {
		return text
	}
	return string(r[:maxRunes])
}

// RelativeTime renders t relative to now ("just now", "3 hours ago"). Dates
// older than 30 days are printed as a calendar date.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < 30*24*time.Hour:
		return humanize.RelTime(t, now, "ago", "from now")
	case t.Year() == now.Year():
		return t.Format("Jan 2")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// FormatCount abbreviates large counts: 1234 -> "1.2K".
func FormatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return humanize.Comma(int64(n))
}
