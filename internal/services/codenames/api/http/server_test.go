package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
	"github.com/mikeczech/codenames/internal/services/codenames/manager"
	"github.com/mikeczech/codenames/internal/services/codenames/storage"
)

type call struct {
	method  string
	gameID  string
	session string
	args    []string
}

type fakeService struct {
	calls []call
	err   error
	state game.State
	games map[string]storage.GameRecord
}

func (f *fakeService) record(method, gameID, session string, args ...string) (game.State, error) {
	f.calls = append(f.calls, call{method: method, gameID: gameID, session: session, args: args})
	return f.state, f.err
}

func (f *fakeService) CreateGame(_ context.Context, name, sessionID string) (manager.Game, error) {
	f.calls = append(f.calls, call{method: "create", session: sessionID, args: []string{name}})
	if f.err != nil {
		return manager.Game{}, f.err
	}
	return manager.Game{ID: "game-1", Name: name}, nil
}

func (f *fakeService) JoinGame(_ context.Context, gameID, sessionID, color, role string) (game.State, error) {
	return f.record("join", gameID, sessionID, color, role)
}

func (f *fakeService) LeaveGame(_ context.Context, gameID, sessionID string) (game.State, error) {
	return f.record("leave", gameID, sessionID)
}

func (f *fakeService) StartGame(_ context.Context, gameID, sessionID string) (game.State, error) {
	return f.record("start", gameID, sessionID)
}

func (f *fakeService) GiveHint(_ context.Context, gameID, sessionID, word string, num int) (game.State, error) {
	return f.record("give_hint", gameID, sessionID, word, strings.Repeat("|", num))
}

func (f *fakeService) Guess(_ context.Context, gameID, sessionID string, wordID int64) (game.State, error) {
	return f.record("guess", gameID, sessionID, strings.Repeat("|", int(wordID)))
}

func (f *fakeService) EndTurn(_ context.Context, gameID, sessionID string) (game.State, error) {
	return f.record("end_turn", gameID, sessionID)
}

func (f *fakeService) GetGame(_ context.Context, gameID string) (storage.GameRecord, error) {
	rec, ok := f.games[gameID]
	if !ok {
		return storage.GameRecord{}, storage.ErrNotFound
	}
	return rec, nil
}

func (f *fakeService) ListWords(_ context.Context, gameID string) ([]storage.WordRecord, error) {
	if _, ok := f.games[gameID]; !ok {
		return nil, storage.ErrNotFound
	}
	selected := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []storage.WordRecord{
		{GameID: gameID, WordID: 7, Value: "ocean", Color: game.ColorBlue, Position: 0, SelectedAt: &selected},
		{GameID: gameID, WordID: 9, Value: "ghost", Color: game.ColorAssassin, Position: 1},
	}, nil
}

func (f *fakeService) ListHints(_ context.Context, gameID string) ([]storage.HintRecord, error) {
	return []storage.HintRecord{{GameID: gameID, HintID: 1}, {GameID: gameID, HintID: 2, Word: "water", Num: 2, Color: game.ColorBlue}}, f.err
}

func (f *fakeService) ListPlayers(_ context.Context, gameID string) ([]storage.PlayerRecord, error) {
	return []storage.PlayerRecord{{GameID: gameID, SessionID: "s1", Color: game.ColorRed, Role: game.RolePlayer}}, f.err
}

func (f *fakeService) ListConditions(_ context.Context, gameID string) ([]storage.ConditionRecord, error) {
	return []storage.ConditionRecord{
		{GameID: gameID, Seq: 3, Condition: game.ConditionNotStarted},
		{GameID: gameID, Seq: 9, Condition: game.ConditionBlueSpy, HintID: 1},
	}, f.err
}

func newTestServer(svc *fakeService, opts Options) *Server {
	if svc.games == nil {
		svc.games = map[string]storage.GameRecord{"game-1": {ID: "game-1", Name: "friday", Condition: game.ConditionNotStarted}}
	}
	opts.Logger = zerolog.Nop()
	return New(svc, opts)
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values, session string) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&fakeService{}, Options{})
	rec := do(t, srv, http.MethodGet, "/healthz", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	srv = newTestServer(&fakeService{}, Options{Ready: func(context.Context) error { return errors.New("db down") }})
	rec = do(t, srv, http.MethodGet, "/healthz", nil, "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestCreateGame(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(svc, Options{})
	rec := do(t, srv, http.MethodPost, "/games", url.Values{"name": {" friday "}}, "creator")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	body := decodeBody[messageBody](t, rec)
	if body.GameID != "game-1" || body.Message == "" {
		t.Fatalf("body = %+v", body)
	}
	want := []call{{method: "create", session: "creator", args: []string{"friday"}}}
	if diff := cmp.Diff(want, svc.calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID response header")
	}
}

func TestCreateGame_DuplicateIsConflict(t *testing.T) {
	svc := &fakeService{err: game.ErrGameAlreadyExists}
	rec := do(t, newTestServer(svc, Options{}), http.MethodPost, "/games", url.Values{"name": {"friday"}}, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if body := decodeBody[errorBody](t, rec); body.Error != string(apperrors.CodeGameAlreadyExists) {
		t.Fatalf("error = %q, want %q", body.Error, apperrors.CodeGameAlreadyExists)
	}
}

func TestActions_RequireSession(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(svc, Options{})
	for _, path := range []string{"join", "leave", "start", "give_hint", "guess", "end_turn"} {
		rec := do(t, srv, http.MethodPut, "/games/game-1/"+path, url.Values{}, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s status = %d, want %d", path, rec.Code, http.StatusUnauthorized)
		}
		if body := decodeBody[errorBody](t, rec); body.Error != string(apperrors.CodeSessionRequired) {
			t.Fatalf("%s error = %q, want %q", path, body.Error, apperrors.CodeSessionRequired)
		}
	}
	if len(svc.calls) != 0 {
		t.Fatalf("calls = %+v, want none", svc.calls)
	}
}

func TestActions_PassFormValues(t *testing.T) {
	tests := []struct {
		path string
		form url.Values
		want call
	}{
		{"join", url.Values{"color": {"red"}, "role": {"2"}}, call{method: "join", gameID: "game-1", session: "s1", args: []string{"red", "2"}}},
		{"leave", url.Values{}, call{method: "leave", gameID: "game-1", session: "s1"}},
		{"start", url.Values{}, call{method: "start", gameID: "game-1", session: "s1"}},
		{"give_hint", url.Values{"word": {"water"}, "num": {"2"}}, call{method: "give_hint", gameID: "game-1", session: "s1", args: []string{"water", "||"}}},
		{"guess", url.Values{"word_id": {"3"}}, call{method: "guess", gameID: "game-1", session: "s1", args: []string{"|||"}}},
		{"end_turn", url.Values{}, call{method: "end_turn", gameID: "game-1", session: "s1"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			svc := &fakeService{state: game.State{Conditions: []game.ConditionRecord{{Condition: game.ConditionBluePlayer}}}}
			rec := do(t, newTestServer(svc, Options{}), http.MethodPut, "/games/game-1/"+tt.path, tt.form, "s1")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
			}
			if len(svc.calls) != 1 {
				t.Fatalf("calls = %d, want 1", len(svc.calls))
			}
			if diff := cmp.Diff(tt.want, svc.calls[0], cmp.AllowUnexported(call{})); diff != "" {
				t.Fatalf("call mismatch (-want +got):\n%s", diff)
			}
			if body := decodeBody[messageBody](t, rec); body.Condition != string(game.ConditionBluePlayer) {
				t.Fatalf("condition = %q, want %q", body.Condition, game.ConditionBluePlayer)
			}
		})
	}
}

func TestActions_SessionHeaderFallback(t *testing.T) {
	svc := &fakeService{}
	req := httptest.NewRequest(http.MethodPut, "/games/game-1/start", nil)
	req.Header.Set(SessionHeader, "from-header")
	rec := httptest.NewRecorder()
	newTestServer(svc, Options{}).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.calls[0].session != "from-header" {
		t.Fatalf("session = %q, want from-header", svc.calls[0].session)
	}
}

func TestActions_InvalidNumbers(t *testing.T) {
	srv := newTestServer(&fakeService{}, Options{})
	for _, tt := range []struct {
		path string
		form url.Values
	}{
		{"give_hint", url.Values{"word": {"water"}, "num": {"two"}}},
		{"guess", url.Values{"word_id": {""}}},
	} {
		rec := do(t, srv, http.MethodPut, "/games/game-1/"+tt.path, tt.form, "s1")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s status = %d, want %d", tt.path, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestActions_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rule violation", game.ErrRoleOccupied, http.StatusForbidden},
		{"state", game.ErrState, http.StatusForbidden},
		{"authorization", game.ErrNotAuthorized, http.StatusUnauthorized},
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"invalid argument", apperrors.New(apperrors.CodeInvalidArgument, "bad"), http.StatusBadRequest},
		{"conflict", storage.ErrSequenceConflict, http.StatusConflict},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			rec := do(t, newTestServer(svc, Options{}), http.MethodPut, "/games/game-1/start", url.Values{}, "s1")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			body := decodeBody[errorBody](t, rec)
			if tt.want == http.StatusInternalServerError && strings.Contains(body.Detail, "disk") {
				t.Fatalf("internal detail leaked: %q", body.Detail)
			}
		})
	}
}

func TestListRoutes(t *testing.T) {
	srv := newTestServer(&fakeService{}, Options{})

	rec := do(t, srv, http.MethodGet, "/games/game-1/words", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("words status = %d", rec.Code)
	}
	words := decodeBody[[]wordJSON](t, rec)
	if len(words) != 2 || words[0].SelectedAt == nil || words[1].SelectedAt != nil {
		t.Fatalf("words = %+v", words)
	}

	rec = do(t, srv, http.MethodGet, "/games/game-1/hints", nil, "")
	hints := decodeBody[[]hintJSON](t, rec)
	if len(hints) != 2 || hints[0].Word != nil || hints[1].Word == nil || *hints[1].Word != "water" {
		t.Fatalf("hints = %+v", hints)
	}

	rec = do(t, srv, http.MethodGet, "/games/game-1/players", nil, "")
	players := decodeBody[[]playerJSON](t, rec)
	if diff := cmp.Diff([]playerJSON{{SessionID: "s1", Color: "RED", Role: "PLAYER"}}, players); diff != "" {
		t.Fatalf("players mismatch (-want +got):\n%s", diff)
	}

	rec = do(t, srv, http.MethodGet, "/games/game-1/conditions", nil, "")
	conditions := decodeBody[[]conditionJSON](t, rec)
	if len(conditions) != 2 || conditions[0].HintID != nil || conditions[1].HintID == nil || *conditions[1].HintID != 1 {
		t.Fatalf("conditions = %+v", conditions)
	}

	rec = do(t, srv, http.MethodGet, "/games/game-1", nil, "")
	if g := decodeBody[gameJSON](t, rec); g.Name != "friday" || g.Condition != "NOT_STARTED" {
		t.Fatalf("game = %+v", g)
	}

	rec = do(t, srv, http.MethodGet, "/games/missing/words", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing words status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestInvite(t *testing.T) {
	srv := newTestServer(&fakeService{}, Options{PublicURL: "https://codenames.example/"})
	rec := do(t, srv, http.MethodGet, "/games/game-1/invite.png", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q, want image/png", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatal("body is not a PNG")
	}

	rec = do(t, srv, http.MethodGet, "/games/missing/invite.png", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing game status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestInviteURL(t *testing.T) {
	tests := []struct {
		base, gameID, want string
	}{
		{"https://x.example", "abc", "https://x.example/games/abc"},
		{"https://x.example/", "abc", "https://x.example/games/abc"},
		{" https://x.example/play/ ", "a b", "https://x.example/play/games/a%20b"},
	}
	for _, tt := range tests {
		if got := inviteURL(tt.base, tt.gameID); got != tt.want {
			t.Fatalf("inviteURL(%q, %q) = %q, want %q", tt.base, tt.gameID, got, tt.want)
		}
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(&fakeService{}, Options{RateLimit: 0.001, RateBurst: 2})
	for i := 0; i < 2; i++ {
		if rec := do(t, srv, http.MethodPut, "/games/game-1/start", url.Values{}, "s1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}
	if rec := do(t, srv, http.MethodPut, "/games/game-1/start", url.Values{}, "s1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec := do(t, srv, http.MethodPut, "/games/game-1/start", url.Values{}, "s2"); rec.Code != http.StatusOK {
		t.Fatalf("other session status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec := do(t, srv, http.MethodGet, "/games/game-1/words", nil, "s1"); rec.Code != http.StatusOK {
		t.Fatalf("read status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func (l *sessionLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func TestSessionLimiterEvictsIdleBuckets(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	now := start
	limiter := newSessionLimiter(10, 1)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		if !limiter.allow(fmt.Sprintf("rotating-%d", i)) {
			t.Fatalf("allow(rotating-%d) = false, want true", i)
		}
	}
	if got := limiter.size(); got != 100 {
		t.Fatalf("size = %d, want %d", got, 100)
	}

	now = start.Add(2 * limiterIdleTTL)
	if !limiter.allow("fresh") {
		t.Fatal("allow(fresh) = false, want true")
	}
	if got := limiter.size(); got != 1 {
		t.Fatalf("size after sweep = %d, want %d", got, 1)
	}
}

func TestSessionLimiterKeepsDrainedBuckets(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	now := start
	limiter := newSessionLimiter(0.001, 1)
	limiter.now = func() time.Time { return now }

	if !limiter.allow("s1") {
		t.Fatal("first allow(s1) = false, want true")
	}
	now = start.Add(2 * limiterIdleTTL)
	limiter.allow("s2")
	if got := limiter.size(); got != 2 {
		t.Fatalf("size = %d, want %d", got, 2)
	}
	if limiter.allow("s1") {
		t.Fatal("allow(s1) after idle = true, want false")
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := do(t, newTestServer(&fakeService{}, Options{}), http.MethodGet, "/nope", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
