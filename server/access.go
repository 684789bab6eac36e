package main

import (
	"context"
	"fmt"
)

// Two gates cover every board-scoped endpoint. Read paths may rely on board
// visibility; anything that mutates a board's contents must go through
// membership, public or not.

// VisibleBoard resolves a board for read access: public boards are open to
// anyone, private boards only to their owner. The caller may be nil
// (anonymous).
func (s *Store) VisibleBoard(ctx context.Context, boardID int64, caller *User) (Board, error) {
	b, err := s.GetBoard(ctx, boardID)
	if err != nil {
		return Board{}, err
	}
	if b.IsPublic {
		return b, nil
	}
	if caller != nil && caller.ID == b.OwnerID {
		return b, nil
	}
	return Board{}, fmt.Errorf("%w: private board", ErrUnauthorized)
}

// MemberBoard resolves a board for mutation: the caller must hold a
// membership row. Owners qualify because CreateBoard enrolls them.
func (s *Store) MemberBoard(ctx context.Context, boardID int64, caller User) (Board, error) {
	b, err := s.GetBoard(ctx, boardID)
	if err != nil {
		return Board{}, err
	}
	ok, err := s.IsBoardMember(ctx, boardID, caller.ID)
	if err != nil {
		return Board{}, err
	}
	if !ok {
		return Board{}, fmt.Errorf("%w: not a board member", ErrForbidden)
	}
	return b, nil
}
