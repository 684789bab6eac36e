package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

func (s *Store) CreateList(ctx context.Context, boardID int64, name string, position int64) (List, error) {
	var l List
	err := s.db.QueryRowContext(ctx,
		`insert into lists(board_id, name, position) values($1,$2,$3)
		 returning id, board_id, name, position`,
		boardID, name, position).
		Scan(&l.ID, &l.BoardID, &l.Name, &l.Position)
	return l, err
}

// GetList resolves a list only within its board; the parent id is part of
// the identity, so a list id guessed across boards stays invisible.
func (s *Store) GetList(ctx context.Context, boardID, listID int64) (List, error) {
	var l List
	err := s.db.QueryRowContext(ctx,
		`select id, board_id, name, position from lists where board_id=$1 and id=$2`, boardID, listID).
		Scan(&l.ID, &l.BoardID, &l.Name, &l.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return List{}, ErrNotFound
	}
	return l, err
}

func (s *Store) ListsByBoard(ctx context.Context, boardID int64) ([]List, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, board_id, name, position from lists where board_id=$1 order by position, id`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []List
	for rows.Next() {
		var l List
		if err := rows.Scan(&l.ID, &l.BoardID, &l.Name, &l.Position); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) UpdateList(ctx context.Context, boardID, listID int64, name *string, position *int64) error {
	set := []string{}
	args := []any{}
	idx := 1
	if name != nil {
		set = append(set, fmt.Sprintf("name=$%d", idx))
		args = append(args, *name)
		idx++
	}
	if position != nil {
		set = append(set, fmt.Sprintf("position=$%d", idx))
		args = append(args, *position)
		idx++
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, boardID, listID)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("update lists set %s where board_id=$%d and id=$%d", strings.Join(set, ", "), idx, idx+1),
		args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteList(ctx context.Context, boardID, listID int64) error {
	res, err := s.db.ExecContext(ctx, `delete from lists where board_id=$1 and id=$2`, boardID, listID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
