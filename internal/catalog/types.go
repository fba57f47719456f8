// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

// Package catalog fetches and caches the upstream fragrance catalog. The
// catalog service owns the data; this package holds a read-only snapshot
// with a TTL and coalesces concurrent refreshes.
package catalog

import "strings"

// Candidate is one catalog item in its canonical upstream shape. Fields pass
// through unmodified so API consumers see exactly what the catalog serves;
// the ranking pipeline only reads the tag and note fields.
type Candidate struct {
	ID         int64  `json:"id"`
	NameEN     string `json:"name_en"`
	NameFA     string `json:"name_fa"`
	Name       string `json:"name,omitempty"`
	Brand      string `json:"brand"`
	Collection string `json:"collection,omitempty"`
	Gender     string `json:"gender"`
	Family     string `json:"family,omitempty"`
	Season     string `json:"season,omitempty"`
	Strength   string `json:"strength,omitempty"`
	Character  string `json:"character,omitempty"`

	NotesTop    []string `json:"notes_top,omitempty"`
	NotesMiddle []string `json:"notes_middle,omitempty"`
	NotesBase   []string `json:"notes_base,omitempty"`
	AllNotes    []string `json:"all_notes,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	ImageURL string `json:"image_url,omitempty"`
}

// DisplayName prefers the Persian name, then the English one, then the
// legacy single-name field.
func (c Candidate) DisplayName() string {
	if c.NameFA != "" {
		return c.NameFA
	}
	if c.NameEN != "" {
		return c.NameEN
	}
	return c.Name
}

// Notes merges the pyramid levels and the flattened note list into one
// de-duplicated, lowercased set. Older catalog entries only populate
// AllNotes; newer ones carry the pyramid.
func (c Candidate) Notes() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, group := range [][]string{c.NotesTop, c.NotesMiddle, c.NotesBase, c.AllNotes} {
		for _, note := range group {
			note = strings.ToLower(strings.TrimSpace(note))
			if note == "" {
				continue
			}
			if _, ok := seen[note]; ok {
				continue
			}
			seen[note] = struct{}{}
			out = append(out, note)
		}
	}
	return out
}

// HasTag reports whether tag appears in the candidate's tag list,
// case-insensitively.
func (c Candidate) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
