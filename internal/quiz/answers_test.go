// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package quiz

import (
	"reflect"
	"testing"
)

func TestMapResponsesScenesContributeMoodAndMoment(t *testing.T) {
	a := MapResponses(UserResponses{
		Scenes: []string{"seaside-morning", "candlelit-dinner"},
	})

	wantMoods := []string{"fresh", "sweet"}
	if !reflect.DeepEqual(a.Moods, wantMoods) {
		t.Errorf("Moods = %v, want %v", a.Moods, wantMoods)
	}
	wantMoments := []string{"outdoor", "evening"}
	if !reflect.DeepEqual(a.Moments, wantMoments) {
		t.Errorf("Moments = %v, want %v", a.Moments, wantMoments)
	}
}

func TestMapResponsesDeduplicatesSceneTags(t *testing.T) {
	// seaside-morning and city-office share the "fresh" mood.
	a := MapResponses(UserResponses{
		Scenes: []string{"seaside-morning", "city-office"},
	})
	if !reflect.DeepEqual(a.Moods, []string{"fresh"}) {
		t.Errorf("Moods = %v, want [fresh]", a.Moods)
	}
	if !reflect.DeepEqual(a.Moments, []string{"outdoor", "daily"}) {
		t.Errorf("Moments = %v, want [outdoor daily]", a.Moments)
	}
}

func TestMapResponsesPairChoices(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		field   string
		want    []string
	}{
		{"left goes to times", "day-night:left", FieldTimes, []string{"day"}},
		{"right goes to times", "day-night:right", FieldTimes, []string{"night"}},
		{"none stores sentinel", "day-night:none", FieldTimes, []string{TagAnyTime}},
		{"style pair", "feminine-masculine:right", FieldStyles, []string{"masculine"}},
		{"moment pair", "indoor-outdoor:left", FieldMoments, []string{"daily"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := MapResponses(UserResponses{Pairwise: []string{tt.encoded}})
			if got := a.Field(tt.field); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("field %q = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestMapResponsesSkipsMalformedEntries(t *testing.T) {
	a := MapResponses(UserResponses{
		Scenes:   []string{"no-such-scene"},
		Pairwise: []string{"day-night", "day-night:sideways", ":left", "no-such-pair:left"},
	})
	if len(a.Moods) != 0 || len(a.Times) != 0 || len(a.Styles) != 0 {
		t.Errorf("malformed input leaked into answers: %+v", a)
	}
}

func TestMapResponsesGenderContributesStyle(t *testing.T) {
	tests := []struct {
		gender string
		want   string
	}{
		{"male", "masculine"},
		{"female", "feminine"},
		{"unisex", "unisex"},
	}
	for _, tt := range tests {
		a := MapResponses(UserResponses{Gender: tt.gender})
		if !reflect.DeepEqual(a.Styles, []string{tt.want}) {
			t.Errorf("gender %q: Styles = %v, want [%s]", tt.gender, a.Styles, tt.want)
		}
	}
}

func TestMapResponsesAvoidancesFoldIntoDislikes(t *testing.T) {
	a := MapResponses(UserResponses{
		Avoidances:   []string{"leather", "tobacco"},
		NoteDislikes: []string{"oud", "leather"},
	})
	want := []string{"leather", "tobacco", "oud"}
	if !reflect.DeepEqual(a.NoteDislikes, want) {
		t.Errorf("NoteDislikes = %v, want %v", a.NoteDislikes, want)
	}
}

func TestMapResponsesIdempotent(t *testing.T) {
	r := UserResponses{
		Gender:       "female",
		Scenes:       []string{"forest-walk", "winter-fireside"},
		Pairwise:     []string{"day-night:right", "feminine-masculine:left"},
		IntensityID:  "strong",
		Avoidances:   []string{"musky"},
		NoteLikes:    []string{"citrus", "woody"},
		NoteDislikes: []string{"sweet"},
	}

	once := MapResponses(r)
	again := Canonicalize(once)
	if !reflect.DeepEqual(once, again) {
		t.Errorf("canonicalizing mapped answers changed them:\n once: %+v\nagain: %+v", once, again)
	}
}

func TestCanonicalizeStripsDuplicatesAndBlanks(t *testing.T) {
	a := Canonicalize(QuestionnaireAnswers{
		Gender:    " Female ",
		Moods:     []string{"fresh", "fresh", "", " sweet "},
		NoteLikes: []string{"citrus", "citrus"},
	})
	if a.Gender != "female" {
		t.Errorf("Gender = %q, want female", a.Gender)
	}
	if !reflect.DeepEqual(a.Moods, []string{"fresh", "sweet"}) {
		t.Errorf("Moods = %v, want [fresh sweet]", a.Moods)
	}
	if !reflect.DeepEqual(a.NoteLikes, []string{"citrus"}) {
		t.Errorf("NoteLikes = %v, want [citrus]", a.NoteLikes)
	}
}

func TestDecodePairChoice(t *testing.T) {
	tests := []struct {
		encoded string
		id      string
		choice  PairChoice
		ok      bool
	}{
		{"day-night:left", "day-night", ChoiceLeft, true},
		{"day-night:none", "day-night", ChoiceNone, true},
		{"day-night:", "", "", false},
		{":left", "", "", false},
		{"day-night", "", "", false},
		{"day-night:maybe", "", "", false},
	}
	for _, tt := range tests {
		id, choice, ok := decodePairChoice(tt.encoded)
		if id != tt.id || choice != tt.choice || ok != tt.ok {
			t.Errorf("decodePairChoice(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.encoded, id, choice, ok, tt.id, tt.choice, tt.ok)
		}
	}
}
