package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/platform/requestctx"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
	"github.com/mikeczech/codenames/internal/services/codenames/storage"
)

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

type messageBody struct {
	Message   string `json:"message"`
	GameID    string `json:"game_id,omitempty"`
	Condition string `json:"condition,omitempty"`
}

type gameJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Condition string    `json:"condition"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type wordJSON struct {
	ID         int64      `json:"id"`
	Value      string     `json:"value"`
	Color      string     `json:"color"`
	Position   int        `json:"position"`
	SelectedAt *time.Time `json:"selected_at"`
}

type hintJSON struct {
	ID        int64     `json:"id"`
	Word      *string   `json:"word"`
	Num       int       `json:"num"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type playerJSON struct {
	SessionID string `json:"session_id"`
	Color     string `json:"color"`
	Role      string `json:"role"`
}

type conditionJSON struct {
	Seq       uint64    `json:"seq"`
	Condition string    `json:"condition"`
	HintID    *int64    `json:"hint_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	created, err := s.svc.CreateGame(r.Context(), name, requestctx.SessionIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageBody{Message: "game created", GameID: created.ID})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.JoinGame(r.Context(), chi.URLParam(r, "gameID"), requestctx.SessionIDFromContext(r.Context()),
		r.FormValue("color"), r.FormValue("role"))
	s.writeAction(w, r, "joined game", state, err)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.LeaveGame(r.Context(), chi.URLParam(r, "gameID"), requestctx.SessionIDFromContext(r.Context()))
	s.writeAction(w, r, "left game", state, err)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.StartGame(r.Context(), chi.URLParam(r, "gameID"), requestctx.SessionIDFromContext(r.Context()))
	s.writeAction(w, r, "game started", state, err)
}

func (s *Server) handleGiveHint(w http.ResponseWriter, r *http.Request) {
	num, err := strconv.Atoi(strings.TrimSpace(r.FormValue("num")))
	if err != nil {
		writeError(w, r, apperrors.New(apperrors.CodeInvalidArgument, "num must be an integer"))
		return
	}
	state, err := s.svc.GiveHint(r.Context(), chi.URLParam(r, "gameID"), requestctx.SessionIDFromContext(r.Context()),
		r.FormValue("word"), num)
	s.writeAction(w, r, "hint given", state, err)
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	wordID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("word_id")), 10, 64)
	if err != nil {
		writeError(w, r, apperrors.New(apperrors.CodeInvalidArgument, "word_id must be an integer"))
		return
	}
	state, err := s.svc.Guess(r.Context(), chi.URLParam(r, "gameID"), requestctx.SessionIDFromContext(r.Context()), wordID)
	s.writeAction(w, r, "guess recorded", state, err)
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.EndTurn(r.Context(), chi.URLParam(r, "gameID"), requestctx.SessionIDFromContext(r.Context()))
	s.writeAction(w, r, "turn ended", state, err)
}

func (s *Server) writeAction(w http.ResponseWriter, r *http.Request, message string, state game.State, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: message, Condition: string(state.Condition())})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gameJSON{
		ID:        rec.ID,
		Name:      rec.Name,
		Condition: string(rec.Condition),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	})
}

func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.ListWords(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]wordJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, wordJSON{
			ID:         rec.WordID,
			Value:      rec.Value,
			Color:      string(rec.Color),
			Position:   rec.Position,
			SelectedAt: rec.SelectedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListHints(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.ListHints(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]hintJSON, 0, len(records))
	for _, rec := range records {
		h := hintJSON{ID: rec.HintID, Num: rec.Num, Color: string(rec.Color), CreatedAt: rec.CreatedAt}
		if rec.Word != "" {
			word := rec.Word
			h.Word = &word
		}
		out = append(out, h)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.ListPlayers(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]playerJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, playerJSON{SessionID: rec.SessionID, Color: string(rec.Color), Role: string(rec.Role)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListConditions(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.ListConditions(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conditionsJSON(records))
}

func conditionsJSON(records []storage.ConditionRecord) []conditionJSON {
	out := make([]conditionJSON, 0, len(records))
	for _, rec := range records {
		c := conditionJSON{Seq: rec.Seq, Condition: string(rec.Condition), CreatedAt: rec.CreatedAt}
		if rec.HintID > 0 {
			hintID := rec.HintID
			c.HintID = &hintID
		}
		out = append(out, c)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors to their HTTP status. Anything else is an
// internal error whose detail is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	domainErr, ok := apperrors.As(err)
	if !ok {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: string(apperrors.CodeInternal), Detail: "internal error"})
		return
	}
	status := domainErr.Code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Str("code", string(domainErr.Code)).Msg("request failed")
		writeJSON(w, status, errorBody{Error: string(domainErr.Code), Detail: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: string(domainErr.Code), Detail: domainErr.Error()})
}
