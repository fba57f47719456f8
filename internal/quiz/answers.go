// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package quiz

import "strings"

// Answer field names. These key the per-field confidence map and the
// estimator weight table.
const (
	FieldMoods        = "moods"
	FieldMoments      = "moments"
	FieldTimes        = "times"
	FieldIntensity    = "intensity"
	FieldStyles       = "styles"
	FieldNoteLikes    = "note_likes"
	FieldNoteDislikes = "note_dislikes"
)

// Non-committal sentinel tags. A field holding only sentinels means the user
// answered but declined to commit.
const (
	TagNotSure = "not-sure"
	TagAny     = "any"
	TagAnyTime = "any-time"
	TagNone    = "none"
)

// Selection caps on the raw response record.
const (
	MaxScenes        = 3
	MaxQuickFireTags = 3
)

// QuestionnaireAnswers is the canonical, flattened answer profile consumed by
// the confidence estimator and the ranking pipeline. Each tag slice holds
// unique tags in insertion order; an empty slice means "no preference".
type QuestionnaireAnswers struct {
	Gender       string   `json:"gender,omitempty" validate:"omitempty,oneof=male female unisex"`
	Moods        []string `json:"moods" validate:"dive,min=1,max=64"`
	Moments      []string `json:"moments" validate:"dive,min=1,max=64"`
	Times        []string `json:"times" validate:"dive,min=1,max=64"`
	Intensity    []string `json:"intensity" validate:"max=2,dive,min=1,max=64"`
	Styles       []string `json:"styles" validate:"dive,min=1,max=64"`
	NoteLikes    []string `json:"note_likes" validate:"dive,min=1,max=64"`
	NoteDislikes []string `json:"note_dislikes" validate:"dive,min=1,max=64"`
}

// Field returns the named tag set. Unknown names return nil.
func (a QuestionnaireAnswers) Field(name string) []string {
	switch name {
	case FieldMoods:
		return a.Moods
	case FieldMoments:
		return a.Moments
	case FieldTimes:
		return a.Times
	case FieldIntensity:
		return a.Intensity
	case FieldStyles:
		return a.Styles
	case FieldNoteLikes:
		return a.NoteLikes
	case FieldNoteDislikes:
		return a.NoteDislikes
	default:
		return nil
	}
}

// UserResponses is the raw, not-yet-canonicalized interaction record. It is
// mutated incrementally as the user answers and flattened into
// QuestionnaireAnswers by MapResponses whenever it changes.
type UserResponses struct {
	// Gender is the chosen gender option ("male", "female", "unisex").
	Gender string `json:"gender,omitempty"`

	// Scenes holds chosen scene card IDs, capped at MaxScenes.
	Scenes []string `json:"scenes,omitempty"`

	// Pairwise holds encoded pair choices of the form
	// "<pairID>:<left|right|none>", one per answered pair.
	Pairwise []string `json:"pairwise,omitempty"`

	// IntensityID is the single chosen intensity option.
	IntensityID string `json:"intensity_id,omitempty"`

	// Avoidances holds chosen safety/avoidance note tags, or the single
	// sentinel "none" when the user explicitly declined all of them.
	Avoidances []string `json:"avoidances,omitempty"`

	// NoteLikes and NoteDislikes hold quick-fire note tags, capped at
	// MaxQuickFireTags each.
	NoteLikes    []string `json:"note_likes,omitempty"`
	NoteDislikes []string `json:"note_dislikes,omitempty"`
}

// PairChoice is one side of a pairwise comparison.
type PairChoice string

const (
	ChoiceLeft  PairChoice = "left"
	ChoiceRight PairChoice = "right"
	ChoiceNone  PairChoice = "none"
)

// EncodePairChoice builds the wire form "<pairID>:<choice>".
func EncodePairChoice(pairID string, choice PairChoice) string {
	return pairID + ":" + string(choice)
}

// decodePairChoice splits an encoded pair response. Malformed entries are
// reported with ok=false and skipped by the mapper.
func decodePairChoice(encoded string) (pairID string, choice PairChoice, ok bool) {
	idx := strings.LastIndex(encoded, ":")
	if idx <= 0 || idx == len(encoded)-1 {
		return "", "", false
	}
	pairID, raw := encoded[:idx], encoded[idx+1:]
	switch PairChoice(raw) {
	case ChoiceLeft, ChoiceRight, ChoiceNone:
		return pairID, PairChoice(raw), true
	default:
		return "", "", false
	}
}

// PairAnswered reports whether the given pair has a recorded choice.
func (r UserResponses) PairAnswered(pairID string) bool {
	for _, encoded := range r.Pairwise {
		if id, _, ok := decodePairChoice(encoded); ok && id == pairID {
			return true
		}
	}
	return false
}

// MapResponses flattens a raw response record into canonical answers. It is a
// pure function: scene choices contribute their mood and moment tags, pair
// choices contribute the chosen side's tag to the pair's target field (or the
// pair's sentinel for "none"), the intensity choice becomes a single tag,
// avoidances fold into disliked notes, and quick-fire tags pass through.
// Every insert de-duplicates, so mapping already-canonical data is a no-op.
func MapResponses(r UserResponses) QuestionnaireAnswers {
	a := QuestionnaireAnswers{
		Gender:       strings.ToLower(strings.TrimSpace(r.Gender)),
		Moods:        []string{},
		Moments:      []string{},
		Times:        []string{},
		Intensity:    []string{},
		Styles:       []string{},
		NoteLikes:    []string{},
		NoteDislikes: []string{},
	}

	// A gender leaning is also a style leaning in the shared vocabulary.
	switch a.Gender {
	case "male":
		a.Styles = appendUnique(a.Styles, "masculine")
	case "female":
		a.Styles = appendUnique(a.Styles, "feminine")
	case "unisex":
		a.Styles = appendUnique(a.Styles, "unisex")
	}

	for _, sceneID := range r.Scenes {
		scene, ok := SceneByID(sceneID)
		if !ok {
			continue
		}
		a.Moods = appendUnique(a.Moods, scene.Mood)
		a.Moments = appendUnique(a.Moments, scene.Moment)
	}

	for _, encoded := range r.Pairwise {
		pairID, choice, ok := decodePairChoice(encoded)
		if !ok {
			continue
		}
		pair, ok := PairByID(pairID)
		if !ok {
			continue
		}

		var tag string
		switch choice {
		case ChoiceLeft:
			tag = pair.Left
		case ChoiceRight:
			tag = pair.Right
		case ChoiceNone:
			tag = pair.None
		}

		switch pair.Field {
		case FieldTimes:
			a.Times = appendUnique(a.Times, tag)
		case FieldStyles:
			a.Styles = appendUnique(a.Styles, tag)
		case FieldMoments:
			a.Moments = appendUnique(a.Moments, tag)
		}
	}

	if r.IntensityID != "" {
		a.Intensity = appendUnique(a.Intensity, r.IntensityID)
	}

	for _, tag := range r.Avoidances {
		a.NoteDislikes = appendUnique(a.NoteDislikes, tag)
	}
	for _, tag := range r.NoteLikes {
		a.NoteLikes = appendUnique(a.NoteLikes, tag)
	}
	for _, tag := range r.NoteDislikes {
		a.NoteDislikes = appendUnique(a.NoteDislikes, tag)
	}

	return a
}

// Canonicalize re-applies the de-duplication invariant to an answer set that
// arrived from outside (e.g. a direct recommend request). Canonical input
// comes back unchanged.
func Canonicalize(a QuestionnaireAnswers) QuestionnaireAnswers {
	return QuestionnaireAnswers{
		Gender:       strings.ToLower(strings.TrimSpace(a.Gender)),
		Moods:        dedupe(a.Moods),
		Moments:      dedupe(a.Moments),
		Times:        dedupe(a.Times),
		Intensity:    dedupe(a.Intensity),
		Styles:       dedupe(a.Styles),
		NoteLikes:    dedupe(a.NoteLikes),
		NoteDislikes: dedupe(a.NoteDislikes),
	}
}

// Clone returns a copy whose slices are independent of the receiver.
func (a QuestionnaireAnswers) Clone() QuestionnaireAnswers {
	return QuestionnaireAnswers{
		Gender:       a.Gender,
		Moods:        append([]string(nil), a.Moods...),
		Moments:      append([]string(nil), a.Moments...),
		Times:        append([]string(nil), a.Times...),
		Intensity:    append([]string(nil), a.Intensity...),
		Styles:       append([]string(nil), a.Styles...),
		NoteLikes:    append([]string(nil), a.NoteLikes...),
		NoteDislikes: append([]string(nil), a.NoteDislikes...),
	}
}

// Clone returns a copy whose slices are independent of the receiver.
func (r UserResponses) Clone() UserResponses {
	return UserResponses{
		Gender:       r.Gender,
		Scenes:       append([]string(nil), r.Scenes...),
		Pairwise:     append([]string(nil), r.Pairwise...),
		IntensityID:  r.IntensityID,
		Avoidances:   append([]string(nil), r.Avoidances...),
		NoteLikes:    append([]string(nil), r.NoteLikes...),
		NoteDislikes: append([]string(nil), r.NoteDislikes...),
	}
}

// appendUnique appends tag unless it is empty or already present.
func appendUnique(tags []string, tag string) []string {
	if tag == "" {
		return tags
	}
	for _, existing := range tags {
		if existing == tag {
			return tags
		}
	}
	return append(tags, tag)
}

// dedupe returns a copy with duplicates and empty tags removed, preserving
// first-seen order.
func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = appendUnique(out, strings.TrimSpace(tag))
	}
	return out
}

// IsSentinelTag reports whether a tag is one of the non-committal
// sentinels. The ranking pipeline uses it to keep sentinels out of note
// matching.
func IsSentinelTag(tag string) bool {
	return isSentinel(tag)
}

// isSentinel reports whether a tag is a non-committal sentinel.
func isSentinel(tag string) bool {
	switch tag {
	case TagNotSure, TagAny, TagAnyTime, TagNone:
		return true
	default:
		return false
	}
}
