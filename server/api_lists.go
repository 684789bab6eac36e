package main

import (
	"fmt"
	"net/http"
	"strings"
)

// Reads ride on board visibility; every mutation goes through membership.

func (a *api) handleListsByBoard(w http.ResponseWriter, r *http.Request) {
	_, b, err := a.visibleBoard(r)
	if err != nil {
		a.fail(w, "lists by board", err)
		return
	}
	items, err := a.store.ListsByBoard(r.Context(), b.ID)
	if err != nil {
		a.fail(w, "lists by board", err)
		return
	}
	writeJSON(w, 200, items)
}

func (a *api) handleGetList(w http.ResponseWriter, r *http.Request) {
	_, b, err := a.visibleBoard(r)
	if err != nil {
		a.fail(w, "get list", err)
		return
	}
	l, err := a.pathList(r, b.ID)
	if err != nil {
		a.fail(w, "get list", err)
		return
	}
	writeJSON(w, 200, l)
}

func (a *api) handleCreateList(w http.ResponseWriter, r *http.Request) {
	_, b, err := a.memberBoard(r)
	if err != nil {
		a.fail(w, "create list", err)
		return
	}
	var req struct {
		Name     string `json:"name"`
		Position int64  `json:"position"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		a.fail(w, "create list", fmt.Errorf("%w: name required", ErrInvalidInput))
		return
	}
	l, err := a.store.CreateList(r.Context(), b.ID, strings.TrimSpace(req.Name), req.Position)
	if err != nil {
		a.fail(w, "create list", err)
		return
	}
	writeJSON(w, 201, l)
}

func (a *api) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	_, l, err := a.memberList(r)
	if err != nil {
		a.fail(w, "update list", err)
		return
	}
	var req struct {
		Name     *string `json:"name"`
		Position *int64  `json:"position"`
	}
	if err := readJSON(w, r, &req); err != nil {
		a.fail(w, "update list", fmt.Errorf("%w: bad payload", ErrInvalidInput))
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		a.fail(w, "update list", fmt.Errorf("%w: name cannot be empty", ErrInvalidInput))
		return
	}
	if err := a.store.UpdateList(r.Context(), l.BoardID, l.ID, req.Name, req.Position); err != nil {
		a.fail(w, "update list", err)
		return
	}
	updated, err := a.store.GetList(r.Context(), l.BoardID, l.ID)
	if err != nil {
		a.fail(w, "update list", err)
		return
	}
	writeJSON(w, 200, updated)
}

func (a *api) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	_, l, err := a.memberList(r)
	if err != nil {
		a.fail(w, "delete list", err)
		return
	}
	if err := a.store.DeleteList(r.Context(), l.BoardID, l.ID); err != nil {
		a.fail(w, "delete list", err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}
