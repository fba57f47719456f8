// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package quiz

// StepKind identifies a questionnaire step by what it asks, not by its
// position. Flow logic dispatches on kind; positions belong to the plan.
type StepKind string

const (
	StepPathSelection  StepKind = "path-selection"
	StepGender         StepKind = "gender"
	StepSceneCards     StepKind = "scene-cards"
	StepPairwise       StepKind = "pairwise"
	StepIntensity      StepKind = "intensity"
	StepSafety         StepKind = "safety-step"
	StepQuickFireNotes StepKind = "quick-fire-notes"
	StepReview         StepKind = "review"
)

// Step is one slot in a questionnaire plan. Pairwise steps carry the pair
// they present; all other kinds are self-describing.
type Step struct {
	Kind StepKind  `json:"kind"`
	Pair *PairSpec `json:"pair,omitempty"`
}

// SceneSpec is a scene card: a pictured moment the user recognizes
// themselves in. Choosing it contributes one mood and one moment tag.
type SceneSpec struct {
	ID     string `json:"id"`
	Mood   string `json:"mood"`
	Moment string `json:"moment"`
}

// PairSpec is a forced-choice comparison. Left and Right are the tags the
// respective choices contribute to Field; None is the sentinel recorded when
// the user declines to pick a side.
type PairSpec struct {
	ID    string `json:"id"`
	Field string `json:"field"`
	Left  string `json:"left"`
	Right string `json:"right"`
	None  string `json:"none"`
}

// Scenes is the scene card deck. Mood and moment tags use the catalog's
// shared vocabulary so mapped answers line up with candidate tags.
var Scenes = []SceneSpec{
	{ID: "seaside-morning", Mood: "fresh", Moment: "outdoor"},
	{ID: "candlelit-dinner", Mood: "sweet", Moment: "evening"},
	{ID: "forest-walk", Mood: "woody", Moment: "outdoor"},
	{ID: "spring-garden", Mood: "floral", Moment: "daily"},
	{ID: "winter-fireside", Mood: "warm", Moment: "evening"},
	{ID: "city-office", Mood: "fresh", Moment: "daily"},
}

// Pairs is the pairwise comparison set. The quick path presents only the
// first pair; the deep path presents all of them.
var Pairs = []PairSpec{
	{ID: "day-night", Field: FieldTimes, Left: "day", Right: "night", None: TagAnyTime},
	{ID: "feminine-masculine", Field: FieldStyles, Left: "feminine", Right: "masculine", None: TagAny},
	{ID: "indoor-outdoor", Field: FieldMoments, Left: "daily", Right: "outdoor", None: TagAny},
}

// IntensityOptions are the selectable projection strengths, plus the
// non-committal sentinel.
var IntensityOptions = []string{"soft", "moderate", "strong", "very_strong", TagNotSure}

// AvoidanceTags are the safety-step note categories a user can rule out.
var AvoidanceTags = []string{
	"leather", "animalic", "tobacco", "musky", "oud", "synthetic",
}

// QuickFireTags are the note categories offered in the quick-fire step.
var QuickFireTags = []string{
	"citrus", "floral", "woody", "spicy", "sweet", "gourmand",
	"fruity", "green", "aquatic", "oriental", "powdery", "herbal",
}

// GenderOptions are the selectable gender leanings.
var GenderOptions = []string{"male", "female", "unisex"}

// SceneByID looks up a scene card.
func SceneByID(id string) (SceneSpec, bool) {
	for _, s := range Scenes {
		if s.ID == id {
			return s, true
		}
	}
	return SceneSpec{}, false
}

// PairByID looks up a pairwise comparison.
func PairByID(id string) (PairSpec, bool) {
	for i := range Pairs {
		if Pairs[i].ID == id {
			return Pairs[i], true
		}
	}
	return PairSpec{}, false
}

// quickPlan builds the 7-step quick questionnaire.
func quickPlan() []Step {
	return []Step{
		{Kind: StepGender},
		{Kind: StepSceneCards},
		{Kind: StepPairwise, Pair: &Pairs[0]},
		{Kind: StepIntensity},
		{Kind: StepSafety},
		{Kind: StepQuickFireNotes},
		{Kind: StepReview},
	}
}

// deepPlan builds the 9-step deep questionnaire. It carries the full pair
// set and is never short-circuited.
func deepPlan() []Step {
	return []Step{
		{Kind: StepGender},
		{Kind: StepSceneCards},
		{Kind: StepPairwise, Pair: &Pairs[0]},
		{Kind: StepPairwise, Pair: &Pairs[1]},
		{Kind: StepPairwise, Pair: &Pairs[2]},
		{Kind: StepIntensity},
		{Kind: StepSafety},
		{Kind: StepQuickFireNotes},
		{Kind: StepReview},
	}
}

// validScene, validIntensity, validAvoidance and validQuickFire gate raw
// response values so unknown IDs never enter the response record.
func validScene(id string) bool {
	_, ok := SceneByID(id)
	return ok
}

func validIntensity(id string) bool {
	for _, opt := range IntensityOptions {
		if opt == id {
			return true
		}
	}
	return false
}

func validAvoidance(tag string) bool {
	if tag == TagNone {
		return true
	}
	for _, t := range AvoidanceTags {
		if t == tag {
			return true
		}
	}
	return false
}

func validQuickFire(tag string) bool {
	for _, t := range QuickFireTags {
		if t == tag {
			return true
		}
	}
	return false
}

func validGender(g string) bool {
	for _, opt := range GenderOptions {
		if opt == g {
			return true
		}
	}
	return false
}
