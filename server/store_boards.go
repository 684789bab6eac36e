package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CreateBoard inserts the board and its owner membership in one transaction,
// so the owner is a member from the instant the board exists.
func (s *Store) CreateBoard(ctx context.Context, ownerID int64, name string, isPublic bool) (Board, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Board{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var b Board
	err = tx.QueryRowContext(ctx,
		`insert into boards(owner_id, name, is_public) values($1,$2,$3)
		 returning id, owner_id, name, is_public, created_at`,
		ownerID, name, isPublic).
		Scan(&b.ID, &b.OwnerID, &b.Name, &b.IsPublic, &b.CreatedAt)
	if err != nil {
		return Board{}, err
	}
	if _, err = tx.ExecContext(ctx,
		`insert into board_members(board_id, user_id) values($1,$2)`, b.ID, ownerID); err != nil {
		return Board{}, err
	}
	if err = tx.Commit(); err != nil {
		return Board{}, err
	}
	return b, nil
}

func (s *Store) GetBoard(ctx context.Context, id int64) (Board, error) {
	var b Board
	err := s.db.QueryRowContext(ctx,
		`select id, owner_id, name, is_public, created_at from boards where id=$1`, id).
		Scan(&b.ID, &b.OwnerID, &b.Name, &b.IsPublic, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Board{}, ErrNotFound
	}
	return b, err
}

// GetBoardOwned resolves a board only within the scope of its owner; someone
// else's board id behaves like a missing one.
func (s *Store) GetBoardOwned(ctx context.Context, id, ownerID int64) (Board, error) {
	var b Board
	err := s.db.QueryRowContext(ctx,
		`select id, owner_id, name, is_public, created_at from boards where id=$1 and owner_id=$2`, id, ownerID).
		Scan(&b.ID, &b.OwnerID, &b.Name, &b.IsPublic, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Board{}, ErrNotFound
	}
	return b, err
}

func (s *Store) BoardsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]Board, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, owner_id, name, is_public, created_at from boards where owner_id=$1 order by id offset $2 limit $3`,
		ownerID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Board
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.IsPublic, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateBoard merges only the fields present in the payload.
func (s *Store) UpdateBoard(ctx context.Context, id int64, name *string, isPublic *bool) error {
	set := []string{}
	args := []any{}
	idx := 1
	if name != nil {
		set = append(set, fmt.Sprintf("name=$%d", idx))
		args = append(args, *name)
		idx++
	}
	if isPublic != nil {
		set = append(set, fmt.Sprintf("is_public=$%d", idx))
		args = append(args, *isPublic)
		idx++
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("update boards set %s where id=$%d", strings.Join(set, ", "), idx), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBoard clears memberships explicitly before deleting the board; the
// schema has no cascade for board_members on purpose.
func (s *Store) DeleteBoard(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `delete from board_members where board_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `delete from boards where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// Board membership

func (s *Store) IsBoardMember(ctx context.Context, boardID, userID int64) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from board_members where board_id=$1 and user_id=$2)`, boardID, userID).
		Scan(&ok)
	return ok, err
}

func (s *Store) AddBoardMember(ctx context.Context, boardID, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`insert into board_members(board_id, user_id) values($1,$2) on conflict do nothing`, boardID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: already a member", ErrConflict)
	}
	return nil
}

// RemoveBoardMember refuses to remove the owner while they still own the
// board; a non-member comes back as ErrNotFound.
func (s *Store) RemoveBoardMember(ctx context.Context, boardID, userID int64) error {
	b, err := s.GetBoard(ctx, boardID)
	if err != nil {
		return err
	}
	if b.OwnerID == userID {
		return fmt.Errorf("%w: cannot remove the board owner", ErrConflict)
	}
	res, err := s.db.ExecContext(ctx,
		`delete from board_members where board_id=$1 and user_id=$2`, boardID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) BoardMembers(ctx context.Context, boardID int64) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select u.id, u.username, u.email, u.signup_date
		 from board_members m join users u on u.id=m.user_id
		 where m.board_id=$1 order by m.id`, boardID)
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

// Board labels

func (s *Store) CreateBoardLabel(ctx context.Context, boardID int64, name, color string) (BoardLabel, error) {
	var l BoardLabel
	err := s.db.QueryRowContext(ctx,
		`insert into board_labels(board_id, name, color) values($1,$2,$3)
		 returning id, board_id, name, color`,
		boardID, name, color).
		Scan(&l.ID, &l.BoardID, &l.Name, &l.Color)
	return l, err
}

func (s *Store) GetBoardLabel(ctx context.Context, boardID, labelID int64) (BoardLabel, error) {
	var l BoardLabel
	err := s.db.QueryRowContext(ctx,
		`select id, board_id, name, color from board_labels where board_id=$1 and id=$2`, boardID, labelID).
		Scan(&l.ID, &l.BoardID, &l.Name, &l.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return BoardLabel{}, ErrNotFound
	}
	return l, err
}

func (s *Store) BoardLabels(ctx context.Context, boardID int64) ([]BoardLabel, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, board_id, name, color from board_labels where board_id=$1 order by id`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BoardLabel
	for rows.Next() {
		var l BoardLabel
		if err := rows.Scan(&l.ID, &l.BoardID, &l.Name, &l.Color); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) UpdateBoardLabel(ctx context.Context, boardID, labelID int64, name, color *string) error {
	set := []string{}
	args := []any{}
	idx := 1
	if name != nil {
		set = append(set, fmt.Sprintf("name=$%d", idx))
		args = append(args, *name)
		idx++
	}
	if color != nil {
		set = append(set, fmt.Sprintf("color=$%d", idx))
		args = append(args, *color)
		idx++
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, boardID, labelID)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("update board_labels set %s where board_id=$%d and id=$%d", strings.Join(set, ", "), idx, idx+1),
		args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteBoardLabel(ctx context.Context, boardID, labelID int64) error {
	res, err := s.db.ExecContext(ctx,
		`delete from board_labels where board_id=$1 and id=$2`, boardID, labelID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
