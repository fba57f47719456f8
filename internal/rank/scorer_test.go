// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package rank

import (
	"testing"

	"github.com/scentwise/scentwise/internal/catalog"
	"github.com/scentwise/scentwise/internal/quiz"
)

func defaultScorer() *Scorer {
	return NewScorer(ScorerOptions{})
}

func TestGenderCompatibility(t *testing.T) {
	tests := []struct {
		name      string
		answers   quiz.QuestionnaireAnswers
		candidate catalog.Candidate
		want      bool
	}{
		{"no preference", quiz.QuestionnaireAnswers{}, catalog.Candidate{Gender: "male"}, true},
		{"no candidate gender", quiz.QuestionnaireAnswers{Gender: "male"}, catalog.Candidate{}, true},
		{"unisex candidate always compatible", quiz.QuestionnaireAnswers{Gender: "female"}, catalog.Candidate{Gender: "unisex"}, true},
		{"masculine vs female", quiz.QuestionnaireAnswers{Gender: "male"}, catalog.Candidate{Gender: "female"}, false},
		{"masculine vs male", quiz.QuestionnaireAnswers{Gender: "male"}, catalog.Candidate{Gender: "male"}, true},
		{"feminine vs male", quiz.QuestionnaireAnswers{Gender: "female"}, catalog.Candidate{Gender: "male"}, false},
		{"feminine vs female", quiz.QuestionnaireAnswers{Gender: "female"}, catalog.Candidate{Gender: "female"}, true},
		{"style preference alone", quiz.QuestionnaireAnswers{Styles: []string{"masculine"}}, catalog.Candidate{Gender: "female"}, false},
		{"strict unisex vs male", quiz.QuestionnaireAnswers{Gender: "unisex"}, catalog.Candidate{Gender: "male"}, false},
		{"strict unisex vs unisex", quiz.QuestionnaireAnswers{Gender: "unisex"}, catalog.Candidate{Gender: "unisex"}, true},
	}

	s := defaultScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.GenderCompatible(tt.answers, tt.candidate); got != tt.want {
				t.Errorf("GenderCompatible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreComponents(t *testing.T) {
	s := defaultScorer()
	c := catalog.Candidate{
		ID:        1,
		Gender:    "female",
		Family:    "floral oriental",
		Season:    "summer",
		Character: "a fresh medium sillage scent",
		AllNotes:  []string{"citrus", "rose"},
		Tags:      []string{"sweet"},
	}

	tests := []struct {
		name    string
		answers quiz.QuestionnaireAnswers
		want    int
	}{
		{"empty answers", quiz.QuestionnaireAnswers{}, 0},
		{"liked note", quiz.QuestionnaireAnswers{NoteLikes: []string{"citrus"}}, 2},
		{"two liked notes", quiz.QuestionnaireAnswers{NoteLikes: []string{"citrus", "rose"}}, 4},
		{"disliked note", quiz.QuestionnaireAnswers{NoteDislikes: []string{"rose"}}, -3},
		{"dislike erases likes", quiz.QuestionnaireAnswers{NoteLikes: []string{"citrus"}, NoteDislikes: []string{"rose"}}, -1},
		{"sentinel dislike ignored", quiz.QuestionnaireAnswers{NoteDislikes: []string{quiz.TagNone}}, 0},
		{"mood in family", quiz.QuestionnaireAnswers{Moods: []string{"floral"}}, 2}, // +1 overlap, +1 summer season
		{"mood in tags", quiz.QuestionnaireAnswers{Moods: []string{"sweet"}}, 1},
		{"mood in character", quiz.QuestionnaireAnswers{Moods: []string{"fresh"}}, 2}, // +1 overlap, +1 summer season
		{"intensity in character", quiz.QuestionnaireAnswers{Intensity: []string{"medium"}}, 1},
		{"intensity sentinel ignored", quiz.QuestionnaireAnswers{Intensity: []string{quiz.TagNotSure}}, 0},
		{"exact gender alignment", quiz.QuestionnaireAnswers{Gender: "female"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(tt.answers, c); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreIntensityMatchesStrengthField(t *testing.T) {
	s := defaultScorer()
	c := catalog.Candidate{Strength: "strong"}
	got := s.Score(quiz.QuestionnaireAnswers{Intensity: []string{"strong"}}, c)
	if got != 1 {
		t.Errorf("Score() = %d, want 1 for a strength match", got)
	}
}

func TestScoreMonotonicInDislikes(t *testing.T) {
	s := defaultScorer()
	c := catalog.Candidate{AllNotes: []string{"leather", "oud", "tobacco"}}
	answers := quiz.QuestionnaireAnswers{NoteLikes: []string{"leather"}}

	prev := s.Score(answers, c)
	dislikes := []string{"leather", "oud", "tobacco"}
	for i := 1; i <= len(dislikes); i++ {
		answers.NoteDislikes = dislikes[:i]
		got := s.Score(answers, c)
		if got > prev {
			t.Errorf("score rose from %d to %d with %d dislikes", prev, got, i)
		}
		prev = got
	}
}

func TestBuildShortlistFiltersAndOrders(t *testing.T) {
	s := NewScorer(ScorerOptions{ShortlistSize: 2, ShortlistSizeFlat: 3})
	pool := []catalog.Candidate{
		{ID: 1, Gender: "male", AllNotes: []string{"leather"}},
		{ID: 2, Gender: "female", AllNotes: []string{"citrus"}},
		{ID: 3, Gender: "unisex", AllNotes: []string{"citrus", "rose"}},
		{ID: 4, Gender: "female"},
	}
	answers := quiz.QuestionnaireAnswers{
		Gender:    "female",
		NoteLikes: []string{"citrus", "rose"},
	}

	got := s.BuildShortlist(answers, pool)
	if len(got) != 2 {
		t.Fatalf("shortlist has %d entries, want 2", len(got))
	}
	// ID 1 is gender-incompatible; ID 3 scores 4, ID 2 scores 4 (like+alignment).
	// Catalog order breaks the tie: 2 before 3.
	if got[0].ID != 2 || got[1].ID != 3 {
		t.Errorf("shortlist order = [%d %d], want [2 3]", got[0].ID, got[1].ID)
	}
	for _, c := range got {
		if c.ID == 1 {
			t.Error("gender-incompatible candidate survived the filter")
		}
	}
}

func TestBuildShortlistFallsBackWhenFilterEmptiesPool(t *testing.T) {
	s := defaultScorer()
	pool := []catalog.Candidate{
		{ID: 1, Gender: "male"},
		{ID: 2, Gender: "male"},
	}
	got := s.BuildShortlist(quiz.QuestionnaireAnswers{Gender: "female"}, pool)
	if len(got) != 2 {
		t.Errorf("shortlist has %d entries, want the unfiltered pool of 2", len(got))
	}
}

func TestBuildShortlistWidensOnFlatSignal(t *testing.T) {
	s := NewScorer(ScorerOptions{ShortlistSize: 2, ShortlistSizeFlat: 4})

	flat := make([]catalog.Candidate, 5)
	for i := range flat {
		flat[i] = catalog.Candidate{ID: int64(i + 1)}
	}
	if got := s.BuildShortlist(quiz.QuestionnaireAnswers{}, flat); len(got) != 4 {
		t.Errorf("flat-signal shortlist has %d entries, want 4", len(got))
	}

	// With signal, the normal cap applies.
	flat[0].AllNotes = []string{"citrus"}
	answers := quiz.QuestionnaireAnswers{NoteLikes: []string{"citrus"}}
	if got := s.BuildShortlist(answers, flat); len(got) != 2 {
		t.Errorf("signal shortlist has %d entries, want 2", len(got))
	}
}

func TestBuildShortlistEmptyPool(t *testing.T) {
	if got := defaultScorer().BuildShortlist(quiz.QuestionnaireAnswers{}, nil); got != nil {
		t.Errorf("BuildShortlist(empty pool) = %v, want nil", got)
	}
}

// Mirrors the acceptance scenario: a feminine profile liking citrus and
// avoiding leather against one compatible citrus item and one masculine
// leather item.
func TestScorerAcceptanceScenario(t *testing.T) {
	s := defaultScorer()
	answers := quiz.QuestionnaireAnswers{
		Gender:       "female",
		NoteLikes:    []string{"citrus"},
		NoteDislikes: []string{"leather"},
		Intensity:    []string{"medium"},
	}

	citrus := catalog.Candidate{
		ID:        1,
		Gender:    "female",
		Character: "bright medium projection",
		AllNotes:  []string{"citrus", "bergamot"},
	}
	leather := catalog.Candidate{
		ID:       2,
		Gender:   "male",
		AllNotes: []string{"leather"},
	}
	plain := citrus
	plain.ID = 3
	plain.AllNotes = []string{"bergamot"}

	if s.GenderCompatible(answers, leather) {
		t.Error("masculine leather item passed the gender filter for a feminine profile")
	}

	citrusScore := s.Score(answers, citrus)
	plainScore := s.Score(answers, plain)
	if citrusScore-plainScore != 2 {
		t.Errorf("citrus item scored %d vs %d, want a +2 liked-note gap", citrusScore, plainScore)
	}
	if citrusScore <= plainScore {
		t.Errorf("citrus item (%d) did not outrank identical item without citrus (%d)", citrusScore, plainScore)
	}

	shortlist := s.BuildShortlist(answers, []catalog.Candidate{leather, plain, citrus})
	for _, c := range shortlist {
		if c.ID == leather.ID {
			t.Error("leather item reached the shortlist")
		}
	}
	if shortlist[0].ID != citrus.ID {
		t.Errorf("shortlist leader = %d, want the citrus item", shortlist[0].ID)
	}
}
