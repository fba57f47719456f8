// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/scentwise/scentwise/internal/catalog"
	"github.com/scentwise/scentwise/internal/logging"
	"github.com/scentwise/scentwise/internal/metrics"
	"github.com/scentwise/scentwise/internal/quiz"
	"github.com/scentwise/scentwise/internal/rank"
	"github.com/scentwise/scentwise/internal/validation"
)

// maxRequestBody bounds request bodies on every POST endpoint.
const maxRequestBody = 64 * 1024

// Ranker produces recommendations for an answer profile.
type Ranker interface {
	Rank(ctx context.Context, answers quiz.QuestionnaireAnswers) (rank.Result, error)
}

// CatalogReader serves the cached catalog snapshot.
type CatalogReader interface {
	Get(ctx context.Context) ([]catalog.Candidate, error)
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	sessions  *quiz.SessionStore
	ranker    Ranker
	catalog   CatalogReader
	startTime time.Time
	version   string
}

// NewHandlers creates the handler set.
func NewHandlers(sessions *quiz.SessionStore, ranker Ranker, reader CatalogReader, version string) *Handlers {
	return &Handlers{
		sessions:  sessions,
		ranker:    ranker,
		catalog:   reader,
		startTime: time.Now(),
		version:   version,
	}
}

// flowView is the session state projection the UI renders from.
type flowView struct {
	SessionID            string                    `json:"session_id"`
	Path                 quiz.Path                 `json:"path"`
	Step                 quiz.Step                 `json:"step"`
	StepIndex            int                       `json:"step_index"`
	TotalSteps           int                       `json:"total_steps"`
	Completed            bool                      `json:"completed"`
	CanAdvance           bool                      `json:"can_advance"`
	QuickFireRecommended bool                      `json:"quick_fire_recommended"`
	Responses            quiz.UserResponses        `json:"responses"`
	Answers              quiz.QuestionnaireAnswers `json:"answers"`
	Confidence           quiz.ConfidenceState      `json:"confidence"`
}

func viewOf(sessionID string, f *quiz.Flow) flowView {
	return flowView{
		SessionID:            sessionID,
		Path:                 f.Path,
		Step:                 f.Current(),
		StepIndex:            f.Index,
		TotalSteps:           len(f.Steps),
		Completed:            f.Completed(),
		CanAdvance:           f.CanAdvance(),
		QuickFireRecommended: f.QuickFireRecommended(),
		Responses:            f.Responses,
		Answers:              f.Answers,
		Confidence:           f.Confidence,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// CreateSession starts a new interview session. An optional body may choose
// the path immediately.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req struct {
		Path quiz.Path `json:"path"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(w, r, &req); err != nil {
			rw.BadRequest("Invalid request body")
			return
		}
	}

	sess := h.sessions.Create()
	if req.Path != quiz.PathUnset {
		if err := h.sessions.Update(sess.ID, func(f *quiz.Flow) {
			f.SelectPath(req.Path)
		}); err != nil {
			rw.InternalError("Failed to initialize session")
			return
		}
	}

	flow, err := h.sessions.View(sess.ID)
	if err != nil {
		rw.InternalError("Failed to load session")
		return
	}
	rw.Created(viewOf(sess.ID, flow))
}

// GetSession returns the current flow state.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	sessionID := chi.URLParam(r, "sessionID")
	flow, err := h.sessions.View(sessionID)
	if err != nil {
		rw.NotFound("Session not found")
		return
	}
	rw.Success(viewOf(sessionID, flow))
}

// DeleteSession discards a session.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(chi.URLParam(r, "sessionID"))
	NewResponseWriter(w, r).NoContent()
}

// SelectPath commits a session to the quick or deep questionnaire.
func (h *Handlers) SelectPath(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req struct {
		Path quiz.Path `json:"path" validate:"required,oneof=quick deep"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	h.mutateSession(rw, r, func(f *quiz.Flow) bool {
		return f.SelectPath(req.Path)
	}, "Path already selected")
}

// responseRequest is the single mutation endpoint payload. Action selects
// which response is being recorded; the matching fields apply.
type responseRequest struct {
	Action string `json:"action" validate:"required,oneof=gender scene pair intensity avoidances quick-fire"`

	Gender       string          `json:"gender,omitempty"`
	SceneID      string          `json:"scene_id,omitempty"`
	PairID       string          `json:"pair_id,omitempty"`
	Choice       quiz.PairChoice `json:"choice,omitempty"`
	IntensityID  string          `json:"intensity_id,omitempty"`
	Avoidances   []string        `json:"avoidances,omitempty"`
	NoteLikes    []string        `json:"note_likes,omitempty"`
	NoteDislikes []string        `json:"note_dislikes,omitempty"`
}

// RecordResponse applies one answer mutation to the session's flow.
// Confidence is recomputed synchronously, so the returned view is always
// consistent with the recorded answers.
func (h *Handlers) RecordResponse(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req responseRequest
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	h.mutateSession(rw, r, func(f *quiz.Flow) bool {
		switch req.Action {
		case "gender":
			return f.RecordGender(req.Gender)
		case "scene":
			return f.ToggleScene(req.SceneID)
		case "pair":
			return f.RecordPairChoice(req.PairID, req.Choice)
		case "intensity":
			return f.RecordIntensity(req.IntensityID)
		case "avoidances":
			f.SetAvoidances(req.Avoidances)
			return true
		case "quick-fire":
			f.RecordQuickFire(req.NoteLikes, req.NoteDislikes)
			return true
		default:
			return false
		}
	}, "Response was not applicable")
}

// Advance moves the session to its next step, honoring the confidence
// short-circuit on the quick path.
func (h *Handlers) Advance(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	h.mutateSession(rw, r, func(f *quiz.Flow) bool {
		moved, skipped := f.Advance()
		if skipped {
			metrics.StepSkips.Inc()
		}
		return moved
	}, "Current step is not complete")
}

// Retreat moves the session one step back. Retreating from the first step
// is a no-op, not an error.
func (h *Handlers) Retreat(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	h.mutateSession(rw, r, func(f *quiz.Flow) bool {
		f.Retreat()
		return true
	}, "")
}

// Jump repositions the session on the first step of the named section.
func (h *Handlers) Jump(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req struct {
		Section quiz.StepKind `json:"section" validate:"required"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	h.mutateSession(rw, r, func(f *quiz.Flow) bool {
		return f.JumpToSection(req.Section)
	}, "Unknown section for this path")
}

// Reset returns the session's flow to the initial state.
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	h.mutateSession(rw, r, func(f *quiz.Flow) bool {
		f.Reset()
		return true
	}, "")
}

// mutateSession runs fn under the session lock and writes the refreshed
// view. A false return from fn is a client error with rejectMessage; an
// empty rejectMessage means fn cannot fail.
func (h *Handlers) mutateSession(rw *ResponseWriter, r *http.Request, fn func(*quiz.Flow) bool, rejectMessage string) {
	sessionID := chi.URLParam(r, "sessionID")

	applied := true
	err := h.sessions.Update(sessionID, func(f *quiz.Flow) {
		applied = fn(f)
	})
	if err != nil {
		rw.NotFound("Session not found")
		return
	}
	if !applied && rejectMessage != "" {
		rw.BadRequest(rejectMessage)
		return
	}

	flow, err := h.sessions.View(sessionID)
	if err != nil {
		rw.NotFound("Session not found")
		return
	}
	rw.Success(viewOf(sessionID, flow))
}

// SessionRecommendations ranks using the session's accumulated answers.
func (h *Handlers) SessionRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	flow, err := h.sessions.View(chi.URLParam(r, "sessionID"))
	if err != nil {
		rw.NotFound("Session not found")
		return
	}
	h.rank(rw, r, flow.Answers)
}

// Recommend ranks a directly supplied answer profile, bypassing sessions.
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req struct {
		Answers quiz.QuestionnaireAnswers `json:"answers"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req.Answers); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	h.rank(rw, r, req.Answers)
}

func (h *Handlers) rank(rw *ResponseWriter, r *http.Request, answers quiz.QuestionnaireAnswers) {
	result, err := h.ranker.Rank(r.Context(), answers)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Ranking pipeline failed")
		rw.Error(http.StatusBadGateway, ErrCodeExternalServiceFail, "No recommendations available right now")
		return
	}

	rw.SuccessWithMeta(result.Items, &APIMeta{Fallback: result.Fallback})
}

// Perfumes serves the cached catalog snapshot as-is.
func (h *Handlers) Perfumes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	candidates, err := h.catalog.Get(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Catalog fetch failed")
		rw.ServiceUnavailable("Catalog temporarily unavailable")
		return
	}
	rw.Success(candidates)
}

// Steps exposes the static interview content: scene cards, pairwise
// comparisons, intensity options, and the tag vocabularies.
func (h *Handlers) Steps(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"scenes":            quiz.Scenes,
		"pairs":             quiz.Pairs,
		"intensity_options": quiz.IntensityOptions,
		"avoidance_tags":    quiz.AvoidanceTags,
		"quick_fire_tags":   quiz.QuickFireTags,
		"gender_options":    quiz.GenderOptions,
	})
}

// Health reports liveness, uptime, and session count.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"sessions":       h.sessions.Len(),
	})
}
