// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package quiz

import "math"

// Flow thresholds on the overall confidence score.
const (
	// SkipThreshold short-circuits the quick path past the quick-fire
	// notes step.
	SkipThreshold = 75

	// QuickFireThreshold marks the quick-fire step as recommended when
	// overall confidence sits below it.
	QuickFireThreshold = 60
)

// ConfidenceLevel buckets the overall score for presentation.
type ConfidenceLevel string

const (
	LevelHigh   ConfidenceLevel = "high"
	LevelMedium ConfidenceLevel = "medium"
	LevelLow    ConfidenceLevel = "low"
)

// ConfidenceState is the estimator output: one score per answer field, a
// weighted overall score, and its level bucket. Field scores are 0 for an
// untouched field or in [20,100] otherwise.
type ConfidenceState struct {
	Fields  map[string]int  `json:"fields"`
	Overall int             `json:"overall"`
	Level   ConfidenceLevel `json:"level"`
}

// fieldWeights drive the overall aggregation. They sum to 1.
var fieldWeights = map[string]float64{
	FieldMoods:        0.20,
	FieldMoments:      0.20,
	FieldTimes:        0.10,
	FieldIntensity:    0.15,
	FieldStyles:       0.15,
	FieldNoteLikes:    0.10,
	FieldNoteDislikes: 0.10,
}

// fieldMaxima declares the selection cap for fields whose score scales with
// how many of the available slots were used. Fields absent here score a flat
// 70 once any definite tag is present.
var fieldMaxima = map[string]int{
	FieldMoods:        MaxScenes,
	FieldMoments:      MaxScenes,
	FieldNoteLikes:    MaxQuickFireTags,
	FieldNoteDislikes: MaxQuickFireTags,
}

// confidenceFields fixes the aggregation order so overall scores are
// reproducible across runs.
var confidenceFields = []string{
	FieldMoods, FieldMoments, FieldTimes, FieldIntensity,
	FieldStyles, FieldNoteLikes, FieldNoteDislikes,
}

// EstimateConfidence scores an answer set. It is pure and cheap enough to
// run synchronously after every recorded response.
func EstimateConfidence(a QuestionnaireAnswers) ConfidenceState {
	state := ConfidenceState{Fields: make(map[string]int, len(confidenceFields))}

	var overall float64
	for _, field := range confidenceFields {
		score := estimateField(a.Field(field), fieldMaxima[field])
		state.Fields[field] = score
		overall += fieldWeights[field] * float64(score)
	}

	state.Overall = int(math.Round(overall))
	state.Level = levelFor(state.Overall)
	return state
}

// estimateField scores one tag set. An empty set is "never asked" and scores
// 0; a sentinel-only set is "asked, declined" and scores the floor of 20.
// Otherwise capped fields earn 40 plus up to 40 for filled slots (never above
// 80), uncapped fields earn a flat 70, and each sentinel mixed into the set
// costs 15, floored at 20.
func estimateField(tags []string, max int) int {
	if len(tags) == 0 {
		return 0
	}

	var definite, sentinel int
	for _, tag := range tags {
		if isSentinel(tag) {
			sentinel++
		} else {
			definite++
		}
	}

	if definite == 0 {
		return 20
	}

	var base float64
	if max > 0 {
		base = 40 + 40*float64(definite)/float64(max)
		if base > 80 {
			base = 80
		}
	} else {
		base = 70
	}

	score := base - 15*float64(sentinel)
	if score < 20 {
		score = 20
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

func levelFor(overall int) ConfidenceLevel {
	switch {
	case overall >= 75:
		return LevelHigh
	case overall < 50:
		return LevelLow
	default:
		return LevelMedium
	}
}
