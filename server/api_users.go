package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

func (a *api) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil || req.Password == "" || strings.TrimSpace(req.Email) == "" {
		a.fail(w, "register", fmt.Errorf("%w: email and password required", ErrInvalidInput))
		return
	}
	email := strings.TrimSpace(req.Email)
	if err := validateEmail(email); err != nil {
		a.fail(w, "register", err)
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		a.fail(w, "hash password", err)
		return
	}
	u, err := a.store.CreateUser(r.Context(), email, hash, strings.TrimSpace(req.Username))
	if err != nil {
		a.fail(w, "create user", err)
		return
	}
	token, err := a.tokens.Issue(u)
	if err != nil {
		a.fail(w, "issue token", err)
		return
	}
	writeJSON(w, 201, map[string]any{"access_token": token, "token_type": "bearer"})
}

func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil || req.Email == "" || req.Password == "" {
		a.fail(w, "login", fmt.Errorf("%w: email and password required", ErrInvalidInput))
		return
	}
	u, err := a.store.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		a.fail(w, "authenticate", err)
		return
	}
	token, err := a.tokens.Issue(u)
	if err != nil {
		a.fail(w, "issue token", err)
		return
	}
	writeJSON(w, 200, map[string]any{"access_token": token, "token_type": "bearer"})
}

func (a *api) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := a.currentUser(r)
	if err != nil {
		a.fail(w, "me", err)
		return
	}
	writeJSON(w, 200, u)
}

func (a *api) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := a.currentUser(r); err != nil {
		a.fail(w, "list users", err)
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
	items, err := a.store.Users(r.Context(), offset, limit)
	if err != nil {
		a.fail(w, "list users", err)
		return
	}
	writeJSON(w, 200, items)
}

func (a *api) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if _, err := a.currentUser(r); err != nil {
		a.fail(w, "get user", err)
		return
	}
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		a.fail(w, "get user", fmt.Errorf("%w: bad user id", ErrInvalidInput))
		return
	}
	u, err := a.store.UserByID(r.Context(), id)
	if err != nil {
		a.fail(w, "get user", err)
		return
	}
	writeJSON(w, 200, u)
}
