// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package rank

import (
	"sort"
	"strings"

	"github.com/scentwise/scentwise/internal/catalog"
	"github.com/scentwise/scentwise/internal/quiz"
)

// genderPreference is the profile's resolved gender leaning.
type genderPreference int

const (
	prefNone genderPreference = iota
	prefMasculine
	prefFeminine
	prefUnisexOnly
)

// ScorerOptions tune the heuristic weights and shortlist bounds. The
// like/dislike asymmetry is deliberate: a single disliked-note hit should be
// able to erase multiple like-hits.
type ScorerOptions struct {
	LikedNoteWeight    int
	DislikedNoteWeight int
	ShortlistSize      int
	ShortlistSizeFlat  int
}

// Scorer is the heuristic pre-filter. Its scores never reach the user; they
// only bound how many candidates the expensive external re-rank sees.
type Scorer struct {
	opts ScorerOptions
}

// NewScorer builds a scorer, defaulting any zero option.
func NewScorer(opts ScorerOptions) *Scorer {
	if opts.LikedNoteWeight <= 0 {
		opts.LikedNoteWeight = 2
	}
	if opts.DislikedNoteWeight <= 0 {
		opts.DislikedNoteWeight = 3
	}
	if opts.ShortlistSize <= 0 {
		opts.ShortlistSize = 50
	}
	if opts.ShortlistSizeFlat < opts.ShortlistSize {
		opts.ShortlistSizeFlat = 80
	}
	return &Scorer{opts: opts}
}

// moodSeasons maps mood tags to the season keyword they imply.
var moodSeasons = map[string]string{
	"warm":   "winter",
	"sweet":  "winter",
	"fresh":  "summer",
	"floral": "summer",
	"woody":  "fall",
}

// Score rates one candidate against an answer profile on an unbounded
// additive scale. Deterministic and side-effect free.
func (s *Scorer) Score(a quiz.QuestionnaireAnswers, c catalog.Candidate) int {
	notes := make(map[string]struct{})
	for _, n := range c.Notes() {
		notes[n] = struct{}{}
	}
	for _, t := range c.Tags {
		notes[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	character := strings.ToLower(c.Character)
	family := strings.ToLower(c.Family)
	season := strings.ToLower(c.Season)

	score := 0
	for _, tag := range a.NoteLikes {
		if _, ok := notes[strings.ToLower(tag)]; ok {
			score += s.opts.LikedNoteWeight
		}
	}
	for _, tag := range a.NoteDislikes {
		if quiz.IsSentinelTag(tag) {
			continue
		}
		if _, ok := notes[strings.ToLower(tag)]; ok {
			score -= s.opts.DislikedNoteWeight
		}
	}

	for _, mood := range a.Moods {
		mood = strings.ToLower(mood)
		if _, ok := notes[mood]; ok {
			score++
			continue
		}
		if strings.Contains(character, mood) || strings.Contains(family, mood) {
			score++
		}
	}

	for _, mood := range a.Moods {
		if implied := moodSeasons[strings.ToLower(mood)]; implied != "" &&
			(implied == "winter" || implied == "summer") &&
			strings.Contains(season, implied) {
			score++
			break
		}
	}

	for _, level := range a.Intensity {
		level = strings.ToLower(level)
		if quiz.IsSentinelTag(level) {
			continue
		}
		if strings.Contains(character, level) || strings.EqualFold(c.Strength, level) {
			score++
			break
		}
	}

	switch resolvePreference(a) {
	case prefMasculine:
		if strings.EqualFold(c.Gender, "male") || c.HasTag("masculine") {
			score += 2
		}
	case prefFeminine:
		if strings.EqualFold(c.Gender, "female") || c.HasTag("feminine") {
			score += 2
		}
	}

	return score
}

// GenderCompatible reports whether a candidate survives the gender
// pre-filter. No expressed preference, or no gender tag on the candidate,
// means compatible; a unisex candidate always is.
func (s *Scorer) GenderCompatible(a quiz.QuestionnaireAnswers, c catalog.Candidate) bool {
	gender := strings.ToLower(strings.TrimSpace(c.Gender))
	if gender == "" || gender == "unisex" {
		return true
	}
	switch resolvePreference(a) {
	case prefMasculine:
		return gender != "female"
	case prefFeminine:
		return gender != "male"
	case prefUnisexOnly:
		return false
	default:
		return true
	}
}

// BuildShortlist filters the pool by gender compatibility (falling back to
// the unfiltered pool if the filter would empty it), sorts descending by
// score with catalog order breaking ties, and truncates. When scoring
// carried no signal (top score equals bottom score) the shortlist widens so
// the downstream re-rank sees more of the pool.
func (s *Scorer) BuildShortlist(a quiz.QuestionnaireAnswers, pool []catalog.Candidate) []catalog.Candidate {
	filtered := make([]catalog.Candidate, 0, len(pool))
	for _, c := range pool {
		if s.GenderCompatible(a, c) {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		filtered = append(filtered, pool...)
	}
	if len(filtered) == 0 {
		return nil
	}

	scores := make(map[int64]int, len(filtered))
	for _, c := range filtered {
		scores[c.ID] = s.Score(a, c)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return scores[filtered[i].ID] > scores[filtered[j].ID]
	})

	limit := s.opts.ShortlistSize
	if scores[filtered[0].ID] == scores[filtered[len(filtered)-1].ID] {
		limit = s.opts.ShortlistSizeFlat
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

func resolvePreference(a quiz.QuestionnaireAnswers) genderPreference {
	styles := make(map[string]struct{}, len(a.Styles))
	for _, s := range a.Styles {
		styles[strings.ToLower(s)] = struct{}{}
	}
	gender := strings.ToLower(a.Gender)

	if _, ok := styles["masculine"]; ok || gender == "male" {
		return prefMasculine
	}
	if _, ok := styles["feminine"]; ok || gender == "female" {
		return prefFeminine
	}
	if _, ok := styles["unisex"]; ok || gender == "unisex" {
		return prefUnisexOnly
	}
	return prefNone
}
