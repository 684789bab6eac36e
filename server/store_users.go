package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateUser inserts a new account. The unique index on lower(email) decides
// duplicates regardless of case; a lost insert comes back as ErrConflict.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash, username string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`insert into users(email, password_hash, username) values($1,$2,$3)
		 on conflict (lower(email)) do nothing
		 returning id, username, email, signup_date`,
		email, passwordHash, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.SignupDate)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("%w: email already registered", ErrConflict)
	}
	return u, err
}

func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`select id, username, email, signup_date from users where id=$1`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.SignupDate)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`select id, username, email, signup_date from users where lower(email)=lower($1)`, email).
		Scan(&u.ID, &u.Username, &u.Email, &u.SignupDate)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) Users(ctx context.Context, offset, limit int) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, username, email, signup_date from users order by id offset $1 limit $2`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.SignupDate); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) userCredsByEmail(ctx context.Context, email string) (User, string, error) {
	var u User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`select id, username, email, signup_date, password_hash from users where lower(email)=lower($1)`, email).
		Scan(&u.ID, &u.Username, &u.Email, &u.SignupDate, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", ErrNotFound
	}
	return u, hash, err
}

// Authenticate verifies the password against the stored hash. Unknown email
// and wrong password fail the same way so callers cannot probe accounts.
func (s *Store) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, hash, err := s.userCredsByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return User{}, err
	}
	if !checkPassword(password, hash) {
		return User{}, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	return u, nil
}
