// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package quiz

// Path selects which questionnaire plan a flow runs.
type Path string

const (
	PathUnset Path = ""
	PathQuick Path = "quick"
	PathDeep  Path = "deep"
)

// Flow is the state machine for one interview session. It tracks the chosen
// plan, the current step, the raw response record, and the derived answers
// and confidence. All navigation is kind-driven; nothing inspects raw step
// indices outside this file.
//
// Flow is not safe for concurrent use; the session store serializes access.
type Flow struct {
	Path       Path                 `json:"path"`
	Index      int                  `json:"index"`
	Steps      []Step               `json:"steps"`
	Responses  UserResponses        `json:"responses"`
	Answers    QuestionnaireAnswers `json:"answers"`
	Confidence ConfidenceState      `json:"confidence"`
}

// NewFlow returns a flow in the initial, path-unselected state.
func NewFlow() *Flow {
	f := &Flow{Steps: []Step{{Kind: StepPathSelection}}}
	f.refresh()
	return f
}

// SelectPath commits the flow to the quick or deep plan. It only acts from
// the initial state; selecting again or passing an unknown path is a no-op.
func (f *Flow) SelectPath(p Path) bool {
	if f.Path != PathUnset {
		return false
	}
	switch p {
	case PathQuick:
		f.Steps = quickPlan()
	case PathDeep:
		f.Steps = deepPlan()
	default:
		return false
	}
	f.Path = p
	f.Index = 0
	return true
}

// Current returns the step the flow is positioned on.
func (f *Flow) Current() Step {
	return f.Steps[f.Index]
}

// Completed reports whether the flow has reached the review step.
func (f *Flow) Completed() bool {
	return f.Current().Kind == StepReview
}

// QuickFireRecommended reports whether the confidence is low enough that the
// quick-fire notes step is worth presenting prominently on the quick path.
func (f *Flow) QuickFireRecommended() bool {
	return f.Path == PathQuick && f.Confidence.Overall < QuickFireThreshold
}

// CanAdvance reports whether the current step's completion predicate holds.
// Steps that tolerate an empty answer (scenes, safety, quick-fire, review)
// always allow advancing.
func (f *Flow) CanAdvance() bool {
	switch step := f.Current(); step.Kind {
	case StepPathSelection:
		return false
	case StepGender:
		return f.Responses.Gender != ""
	case StepSceneCards:
		return len(f.Responses.Scenes) > 0
	case StepPairwise:
		return step.Pair != nil && f.Responses.PairAnswered(step.Pair.ID)
	case StepIntensity:
		return f.Responses.IntensityID != ""
	default:
		return true
	}
}

// Advance moves to the next step when the current step is complete. On the
// quick path, an overall confidence at or above SkipThreshold jumps the flow
// over the quick-fire notes step straight to review. Advancing from the
// final step, or with an unsatisfied predicate, is a no-op returning false.
// The second return reports whether the step was skipped.
func (f *Flow) Advance() (moved, skipped bool) {
	if !f.CanAdvance() || f.Index >= len(f.Steps)-1 {
		return false, false
	}

	next := f.Index + 1
	if f.Path == PathQuick &&
		f.Steps[next].Kind == StepQuickFireNotes &&
		f.Confidence.Overall >= SkipThreshold {
		for next < len(f.Steps)-1 && f.Steps[next].Kind == StepQuickFireNotes {
			next++
			skipped = true
		}
	}

	f.Index = next
	return true, skipped
}

// Retreat moves one step back, stopping at the first step.
func (f *Flow) Retreat() bool {
	if f.Index == 0 {
		return false
	}
	f.Index--
	return true
}

// JumpToSection repositions the flow on the first step of the given kind.
// Unknown kinds, or kinds absent from the active plan, are a no-op. Already
// recorded answers are kept; re-answering overwrites in place.
func (f *Flow) JumpToSection(kind StepKind) bool {
	for i, step := range f.Steps {
		if step.Kind == kind {
			f.Index = i
			return true
		}
	}
	return false
}

// Reset returns the flow to the initial state, discarding the plan and every
// recorded response.
func (f *Flow) Reset() {
	*f = *NewFlow()
}

// RecordGender stores the gender choice. Unknown options are ignored.
func (f *Flow) RecordGender(gender string) bool {
	if !validGender(gender) {
		return false
	}
	f.Responses.Gender = gender
	f.refresh()
	return true
}

// ToggleScene adds or removes a scene card choice. Adding beyond MaxScenes
// or toggling an unknown scene is a no-op.
func (f *Flow) ToggleScene(sceneID string) bool {
	if !validScene(sceneID) {
		return false
	}
	for i, id := range f.Responses.Scenes {
		if id == sceneID {
			f.Responses.Scenes = append(f.Responses.Scenes[:i], f.Responses.Scenes[i+1:]...)
			f.refresh()
			return true
		}
	}
	if len(f.Responses.Scenes) >= MaxScenes {
		return false
	}
	f.Responses.Scenes = append(f.Responses.Scenes, sceneID)
	f.refresh()
	return true
}

// RecordPairChoice stores a side for the given pair, replacing any earlier
// choice for the same pair.
func (f *Flow) RecordPairChoice(pairID string, choice PairChoice) bool {
	if _, ok := PairByID(pairID); !ok {
		return false
	}
	switch choice {
	case ChoiceLeft, ChoiceRight, ChoiceNone:
	default:
		return false
	}

	encoded := EncodePairChoice(pairID, choice)
	for i, existing := range f.Responses.Pairwise {
		if id, _, ok := decodePairChoice(existing); ok && id == pairID {
			f.Responses.Pairwise[i] = encoded
			f.refresh()
			return true
		}
	}
	f.Responses.Pairwise = append(f.Responses.Pairwise, encoded)
	f.refresh()
	return true
}

// RecordIntensity stores the intensity choice.
func (f *Flow) RecordIntensity(id string) bool {
	if !validIntensity(id) {
		return false
	}
	f.Responses.IntensityID = id
	f.refresh()
	return true
}

// SetAvoidances replaces the safety-step selection. The sentinel "none" is
// exclusive: when present, every other tag is dropped. Unknown tags are
// filtered out.
func (f *Flow) SetAvoidances(tags []string) {
	selected := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !validAvoidance(tag) {
			continue
		}
		if tag == TagNone {
			selected = []string{TagNone}
			break
		}
		selected = appendUnique(selected, tag)
	}
	f.Responses.Avoidances = selected
	f.refresh()
}

// RecordQuickFire replaces the quick-fire likes and dislikes. Unknown tags
// are filtered; each list is capped at MaxQuickFireTags; a tag present in
// both lists counts as a dislike.
func (f *Flow) RecordQuickFire(likes, dislikes []string) {
	f.Responses.NoteDislikes = capTags(dislikes, MaxQuickFireTags, nil)
	f.Responses.NoteLikes = capTags(likes, MaxQuickFireTags, f.Responses.NoteDislikes)
	f.refresh()
}

// capTags filters to known quick-fire tags, drops any tag in exclude, and
// truncates to max.
func capTags(tags []string, max int, exclude []string) []string {
	out := make([]string, 0, max)
	for _, tag := range tags {
		if len(out) >= max {
			break
		}
		if !validQuickFire(tag) {
			continue
		}
		excluded := false
		for _, ex := range exclude {
			if ex == tag {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		out = appendUnique(out, tag)
	}
	return out
}

// refresh re-derives answers and confidence from the response record. Every
// record operation ends here so reads always see consistent state.
func (f *Flow) refresh() {
	f.Answers = MapResponses(f.Responses)
	f.Confidence = EstimateConfidence(f.Answers)
}

// Clone returns a deep copy of the flow. Readers hold the copy while the
// live flow keeps mutating under its session lock. Step.Pair pointers are
// shared; pair specs are static content and never written.
func (f *Flow) Clone() *Flow {
	c := *f
	c.Steps = append([]Step(nil), f.Steps...)
	c.Responses = f.Responses.Clone()
	c.Answers = f.Answers.Clone()
	if f.Confidence.Fields != nil {
		fields := make(map[string]int, len(f.Confidence.Fields))
		for name, score := range f.Confidence.Fields {
			fields[name] = score
		}
		c.Confidence.Fields = fields
	}
	return &c
}
