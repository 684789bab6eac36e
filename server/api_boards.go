package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

func (a *api) handleListBoards(w http.ResponseWriter, r *http.Request) {
	u, err := a.currentUser(r)
	if err != nil {
		a.fail(w, "list boards", err)
		return
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	if offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 100
	}
	items, err := a.store.BoardsByOwner(r.Context(), u.ID, offset, limit)
	if err != nil {
		a.fail(w, "list boards", err)
		return
	}
	writeJSON(w, 200, items)
}

func (a *api) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	u, err := a.currentUser(r)
	if err != nil {
		a.fail(w, "create board", err)
		return
	}
	var req struct {
		Name     string `json:"name"`
		IsPublic bool   `json:"is_public"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		a.fail(w, "create board", fmt.Errorf("%w: name required", ErrInvalidInput))
		return
	}
	b, err := a.store.CreateBoard(r.Context(), u.ID, strings.TrimSpace(req.Name), req.IsPublic)
	if err != nil {
		a.fail(w, "create board", err)
		return
	}
	writeJSON(w, 201, b)
}

func (a *api) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	_, b, err := a.visibleBoard(r)
	if err != nil {
		a.fail(w, "get board", err)
		return
	}
	writeJSON(w, 200, b)
}

// Board properties are owner business: the lookup itself is scoped to the
// caller, so someone else's board reads as missing.
func (a *api) handleUpdateBoard(w http.ResponseWriter, r *http.Request) {
	u, err := a.currentUser(r)
	if err != nil {
		a.fail(w, "update board", err)
		return
	}
	id, err := a.pathBoardID(r)
	if err != nil {
		a.fail(w, "update board", err)
		return
	}
	if _, err := a.store.GetBoardOwned(r.Context(), id, u.ID); err != nil {
		a.fail(w, "update board", err)
		return
	}
	var req struct {
		Name     *string `json:"name"`
		IsPublic *bool   `json:"is_public"`
	}
	if err := readJSON(w, r, &req); err != nil {
		a.fail(w, "update board", fmt.Errorf("%w: bad payload", ErrInvalidInput))
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		a.fail(w, "update board", fmt.Errorf("%w: name cannot be empty", ErrInvalidInput))
		return
	}
	if err := a.store.UpdateBoard(r.Context(), id, req.Name, req.IsPublic); err != nil {
		a.fail(w, "update board", err)
		return
	}
	b, err := a.store.GetBoard(r.Context(), id)
	if err != nil {
		a.fail(w, "update board", err)
		return
	}
	writeJSON(w, 200, b)
}

func (a *api) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	u, err := a.currentUser(r)
	if err != nil {
		a.fail(w, "delete board", err)
		return
	}
	id, err := a.pathBoardID(r)
	if err != nil {
		a.fail(w, "delete board", err)
		return
	}
	if _, err := a.store.GetBoardOwned(r.Context(), id, u.ID); err != nil {
		a.fail(w, "delete board", err)
		return
	}
	if err := a.store.DeleteBoard(r.Context(), id); err != nil {
		a.fail(w, "delete board", err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

// Members

func (a *api) handleBoardMembers(w http.ResponseWriter, r *http.Request) {
	_, b, err := a.memberBoard(r)
	if err != nil {
		a.fail(w, "board members", err)
		return
	}
	items, err := a.store.BoardMembers(r.Context(), b.ID)
	if err != nil {
		a.fail(w, "board members", err)
		return
	}
	writeJSON(w, 200, items)
}

func (a *api) handleAddBoardMember(w http.ResponseWriter, r *http.Request) {
	_, b, err := a.memberBoard(r)
	if err != nil {
		a.fail(w, "add board member", err)
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		a.fail(w, "add board member", fmt.Errorf("%w: email required", ErrInvalidInput))
		return
	}
	target, err := a.store.UserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		a.fail(w, "add board member", err)
		return
	}
	if err := a.store.AddBoardMember(r.Context(), b.ID, target.ID); err != nil {
		a.fail(w, "add board member", err)
		return
	}
	writeJSON(w, 201, map[string]any{"ok": true})
}

func (a *api) handleRemoveBoardMember(w http.ResponseWriter, r *http.Request) {
	_, b, err := a.memberBoard(r)
	if err != nil {
		a.fail(w, "remove board member", err)
		return
	}
	uid, err := parseID(r.PathValue("userID"))
	if err != nil {
		a.fail(w, "remove board member", fmt.Errorf("%w: bad user id", ErrInvalidInput))
		return
	}
	if err := a.store.RemoveBoardMember(r.Context(), b.ID, uid); err != nil {
		a.fail(w, "remove board member", err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

// Labels

func (a *api) handleBoardLabels(w http.ResponseWriter, r *http.Request) {
	_, b, err := a.memberBoard(r)
	if err != nil {
		a.fail(w, "board labels", err)
		return
	}
	items, err := a.store.BoardLabels(r.Context(), b.ID)
	if err != nil {
		a.fail(w, "board labels", err)
		return
	}
	writeJSON(w, 200, items)
}

func (a *api) handleCreateBoardLabel(w http.ResponseWriter, r *http.Request) {
	_, b, err := a.memberBoard(r)
	if err != nil {
		a.fail(w, "create board label", err)
		return
	}
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		a.fail(w, "create board label", fmt.Errorf("%w: name required", ErrInvalidInput))
		return
	}
	l, err := a.store.CreateBoardLabel(r.Context(), b.ID, strings.TrimSpace(req.Name), req.Color)
	if err != nil {
		a.fail(w, "create board label", err)
		return
	}
	writeJSON(w, 201, l)
}

func (a *api) handleUpdateBoardLabel(w http.ResponseWriter, r *http.Request) {
	_, b, err := a.memberBoard(r)
	if err != nil {
		a.fail(w, "update board label", err)
		return
	}
	id, err := parseID(r.PathValue("labelID"))
	if err != nil {
		a.fail(w, "update board label", fmt.Errorf("%w: bad label id", ErrInvalidInput))
		return
	}
	var req struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}
	if err := readJSON(w, r, &req); err != nil {
		a.fail(w, "update board label", fmt.Errorf("%w: bad payload", ErrInvalidInput))
		return
	}
	if err := a.store.UpdateBoardLabel(r.Context(), b.ID, id, req.Name, req.Color); err != nil {
		a.fail(w, "update board label", err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

func (a *api) handleDeleteBoardLabel(w http.ResponseWriter, r *http.Request) {
	_, b, err := a.memberBoard(r)
	if err != nil {
		a.fail(w, "delete board label", err)
		return
	}
	id, err := parseID(r.PathValue("labelID"))
	if err != nil {
		a.fail(w, "delete board label", fmt.Errorf("%w: bad label id", ErrInvalidInput))
		return
	}
	if err := a.store.DeleteBoardLabel(r.Context(), b.ID, id); err != nil {
		a.fail(w, "delete board label", err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}
