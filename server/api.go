package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

type api struct {
	cfg    Config
	store  *Store
	files  *fileStore
	tokens *tokens
	log    *slog.Logger
}

func newAPI(cfg Config, store *Store, files *fileStore, log *slog.Logger) *api {
	return &api{cfg: cfg, store: store, files: files, tokens: newTokens(cfg), log: log}
}

func parseID(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

// errStatus maps the failure kinds to statuses so the transport stays a thin
// shell over the store's typed errors.
func errStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return 400, "invalid input"
	case errors.Is(err, ErrUnauthorized):
		return 401, "unauthorized"
	case errors.Is(err, ErrForbidden):
		return 403, "forbidden"
	case errors.Is(err, ErrNotFound):
		return 404, "not found"
	case errors.Is(err, ErrConflict):
		return 409, "conflict"
	}
	return 500, "internal error"
}

// fail writes the mapped error; only genuine 500s reach the log.
func (a *api) fail(w http.ResponseWriter, msg string, err error) {
	status, text := errStatus(err)
	if status == 500 {
		a.log.Error(msg, "err", err)
	}
	writeError(w, status, text)
}

// currentUser resolves the bearer token to a live user record.
func (a *api) currentUser(r *http.Request) (User, error) {
	raw, err := bearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	uid, err := a.tokens.Verify(raw)
	if err != nil {
		return User{}, err
	}
	u, err := a.store.UserByID(r.Context(), uid)
	if errors.Is(err, ErrNotFound) {
		// valid signature, but the subject is gone
		return User{}, fmt.Errorf("%w: unknown subject", ErrUnauthorized)
	}
	return u, err
}

// optionalUser is for read endpoints that serve anonymous callers too. No
// header means anonymous; a header that fails to verify is still an error.
func (a *api) optionalUser(r *http.Request) (*User, error) {
	if r.Header.Get("Authorization") == "" {
		return nil, nil
	}
	u, err := a.currentUser(r)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Path resolvers. Every nested endpoint re-derives the full parent chain, so
// ids guessed across boards or lists never resolve.

func (a *api) pathBoardID(r *http.Request) (int64, error) {
	id, err := parseID(r.PathValue("boardID"))
	if err != nil {
		return 0, fmt.Errorf("%w: bad board id", ErrInvalidInput)
	}
	return id, nil
}

func (a *api) visibleBoard(r *http.Request) (*User, Board, error) {
	u, err := a.optionalUser(r)
	if err != nil {
		return nil, Board{}, err
	}
	id, err := a.pathBoardID(r)
	if err != nil {
		return nil, Board{}, err
	}
	b, err := a.store.VisibleBoard(r.Context(), id, u)
	return u, b, err
}

func (a *api) memberBoard(r *http.Request) (User, Board, error) {
	u, err := a.currentUser(r)
	if err != nil {
		return User{}, Board{}, err
	}
	id, err := a.pathBoardID(r)
	if err != nil {
		return User{}, Board{}, err
	}
	b, err := a.store.MemberBoard(r.Context(), id, u)
	return u, b, err
}

func (a *api) pathList(r *http.Request, boardID int64) (List, error) {
	id, err := parseID(r.PathValue("listID"))
	if err != nil {
		return List{}, fmt.Errorf("%w: bad list id", ErrInvalidInput)
	}
	return a.store.GetList(r.Context(), boardID, id)
}

func (a *api) pathCard(r *http.Request, listID int64) (Card, error) {
	id, err := parseID(r.PathValue("cardID"))
	if err != nil {
		return Card{}, fmt.Errorf("%w: bad card id", ErrInvalidInput)
	}
	return a.store.GetCard(r.Context(), listID, id)
}

func (a *api) visibleCard(r *http.Request) (*User, Card, error) {
	u, b, err := a.visibleBoard(r)
	if err != nil {
		return nil, Card{}, err
	}
	l, err := a.pathList(r, b.ID)
	if err != nil {
		return nil, Card{}, err
	}
	c, err := a.pathCard(r, l.ID)
	return u, c, err
}

func (a *api) memberList(r *http.Request) (User, List, error) {
	u, b, err := a.memberBoard(r)
	if err != nil {
		return User{}, List{}, err
	}
	l, err := a.pathList(r, b.ID)
	return u, l, err
}

func (a *api) memberCard(r *http.Request) (User, Card, error) {
	u, l, err := a.memberList(r)
	if err != nil {
		return User{}, Card{}, err
	}
	c, err := a.pathCard(r, l.ID)
	return u, c, err
}

func (a *api) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", a.handleHealth)

	// Identity
	mux.HandleFunc("POST /api/users/register", a.handleRegister)
	mux.HandleFunc("POST /api/users/login", a.handleLogin)
	mux.HandleFunc("GET /api/users/me", a.handleMe)
	mux.HandleFunc("GET /api/users", a.handleListUsers)
	mux.HandleFunc("GET /api/users/{id}", a.handleGetUser)

	// Boards
	mux.HandleFunc("GET /api/boards", a.handleListBoards)
	mux.HandleFunc("POST /api/boards", a.handleCreateBoard)
	mux.HandleFunc("GET /api/boards/{boardID}", a.handleGetBoard)
	mux.HandleFunc("PATCH /api/boards/{boardID}", a.handleUpdateBoard)
	mux.HandleFunc("DELETE /api/boards/{boardID}", a.handleDeleteBoard)

	// Board members
	mux.HandleFunc("GET /api/boards/{boardID}/members", a.handleBoardMembers)
	mux.HandleFunc("POST /api/boards/{boardID}/members", a.handleAddBoardMember)
	mux.HandleFunc("DELETE /api/boards/{boardID}/members/{userID}", a.handleRemoveBoardMember)

	// Board labels
	mux.HandleFunc("GET /api/boards/{boardID}/labels", a.handleBoardLabels)
	mux.HandleFunc("POST /api/boards/{boardID}/labels", a.handleCreateBoardLabel)
	mux.HandleFunc("PATCH /api/boards/{boardID}/labels/{labelID}", a.handleUpdateBoardLabel)
	mux.HandleFunc("DELETE /api/boards/{boardID}/labels/{labelID}", a.handleDeleteBoardLabel)

	// Lists
	mux.HandleFunc("GET /api/boards/{boardID}/lists", a.handleListsByBoard)
	mux.HandleFunc("POST /api/boards/{boardID}/lists", a.handleCreateList)
	mux.HandleFunc("GET /api/boards/{boardID}/lists/{listID}", a.handleGetList)
	mux.HandleFunc("PATCH /api/boards/{boardID}/lists/{listID}", a.handleUpdateList)
	mux.HandleFunc("DELETE /api/boards/{boardID}/lists/{listID}", a.handleDeleteList)

	// Cards
	cards := "/api/boards/{boardID}/lists/{listID}/cards"
	mux.HandleFunc("GET "+cards, a.handleCardsByList)
	mux.HandleFunc("POST "+cards, a.handleCreateCard)
	mux.HandleFunc("GET "+cards+"/{cardID}", a.handleGetCard)
	mux.HandleFunc("PATCH "+cards+"/{cardID}", a.handleUpdateCard)
	mux.HandleFunc("DELETE "+cards+"/{cardID}", a.handleDeleteCard)
	mux.HandleFunc("POST "+cards+"/{cardID}/archive", a.handleArchiveCard)
	mux.HandleFunc("POST "+cards+"/{cardID}/unarchive", a.handleUnarchiveCard)

	// Comments
	mux.HandleFunc("GET "+cards+"/{cardID}/comments", a.handleCommentsByCard)
	mux.HandleFunc("POST "+cards+"/{cardID}/comments", a.handleAddComment)
	mux.HandleFunc("GET "+cards+"/{cardID}/comments/{commentID}", a.handleGetComment)
	mux.HandleFunc("PATCH "+cards+"/{cardID}/comments/{commentID}", a.handleUpdateComment)
	mux.HandleFunc("DELETE "+cards+"/{cardID}/comments/{commentID}", a.handleDeleteComment)

	// Checklists
	mux.HandleFunc("GET "+cards+"/{cardID}/checklists", a.handleCheckListsByCard)
	mux.HandleFunc("POST "+cards+"/{cardID}/checklists", a.handleCreateCheckList)
	mux.HandleFunc("GET "+cards+"/{cardID}/checklists/{checklistID}", a.handleGetCheckList)
	mux.HandleFunc("PATCH "+cards+"/{cardID}/checklists/{checklistID}", a.handleUpdateCheckList)
	mux.HandleFunc("DELETE "+cards+"/{cardID}/checklists/{checklistID}", a.handleDeleteCheckList)

	// Card members
	mux.HandleFunc("GET "+cards+"/{cardID}/members", a.handleCardMembers)
	mux.HandleFunc("POST "+cards+"/{cardID}/members", a.handleAddCardMember)
	mux.HandleFunc("DELETE "+cards+"/{cardID}/members/{userID}", a.handleRemoveCardMember)

	// Activity
	mux.HandleFunc("GET "+cards+"/{cardID}/activity", a.handleCardActivity)

	// Card labels
	mux.HandleFunc("GET "+cards+"/{cardID}/labels", a.handleCardLabels)
	mux.HandleFunc("POST "+cards+"/{cardID}/labels", a.handleAttachCardLabel)
	mux.HandleFunc("DELETE "+cards+"/{cardID}/labels/{labelID}", a.handleDetachCardLabel)

	// Attachments
	mux.HandleFunc("GET "+cards+"/{cardID}/attachments", a.handleAttachmentsByCard)
	mux.HandleFunc("POST "+cards+"/{cardID}/attachments", a.handleAddAttachment)
	mux.HandleFunc("DELETE "+cards+"/{cardID}/attachments/{attachmentID}", a.handleDeleteAttachment)
}

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
}

func withLogging(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: 200}
		start := time.Now()
		next.ServeHTTP(sw, r)
		log.Info("http", "method", r.Method, "path", r.URL.Path, "status", sw.status, "dur_ms", time.Since(start).Milliseconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }
