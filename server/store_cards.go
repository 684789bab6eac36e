package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const cardColumns = `id, list_id, title, description, is_active, due_date, reminder_at, created_at`

func scanCard(row *sql.Row) (Card, error) {
	var c Card
	err := row.Scan(&c.ID, &c.ListID, &c.Title, &c.Description, &c.IsActive, &c.DueDate, &c.ReminderAt, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, ErrNotFound
	}
	return c, err
}

func (s *Store) CreateCard(ctx context.Context, listID int64, title, description string, dueDate, reminderAt *time.Time) (Card, error) {
	return scanCard(s.db.QueryRowContext(ctx,
		`insert into cards(list_id, title, description, due_date, reminder_at) values($1,$2,$3,$4,$5)
		 returning `+cardColumns,
		listID, title, description, dueDate, reminderAt))
}

// GetCard filters by list as well as id; the parent chain is the identity.
func (s *Store) GetCard(ctx context.Context, listID, cardID int64) (Card, error) {
	return scanCard(s.db.QueryRowContext(ctx,
		`select `+cardColumns+` from cards where list_id=$1 and id=$2`, listID, cardID))
}

func (s *Store) CardsByList(ctx context.Context, listID int64) ([]Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+cardColumns+` from cards where list_id=$1 order by id`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Card
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.ID, &c.ListID, &c.Title, &c.Description, &c.IsActive, &c.DueDate, &c.ReminderAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CardUpdate carries the optional-field merge for UpdateCard; nil fields
// leave the stored values untouched.
type CardUpdate struct {
	Title       *string
	Description *string
	ListID      *int64
	DueDate     *time.Time
	ReminderAt  *time.Time
}

func (s *Store) UpdateCard(ctx context.Context, listID, cardID int64, upd CardUpdate) error {
	set := []string{}
	args := []any{}
	idx := 1
	add := func(col string, v any) {
		set = append(set, fmt.Sprintf("%s=$%d", col, idx))
		args = append(args, v)
		idx++
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.ListID != nil {
		add("list_id", *upd.ListID)
	}
	if upd.DueDate != nil {
		add("due_date", *upd.DueDate)
	}
	if upd.ReminderAt != nil {
		add("reminder_at", *upd.ReminderAt)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, listID, cardID)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("update cards set %s where list_id=$%d and id=$%d", strings.Join(set, ", "), idx, idx+1),
		args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetCardArchived(ctx context.Context, listID, cardID int64, archived bool) error {
	res, err := s.db.ExecContext(ctx,
		`update cards set is_active=$1 where list_id=$2 and id=$3`, !archived, listID, cardID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCard(ctx context.Context, listID, cardID int64) error {
	res, err := s.db.ExecContext(ctx, `delete from cards where list_id=$1 and id=$2`, listID, cardID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Comments

func (s *Store) AddComment(ctx context.Context, cardID, userID int64, body string) (Comment, error) {
	var c Comment
	err := s.db.QueryRowContext(ctx,
		`insert into comments(card_id, user_id, body) values($1,$2,$3)
		 returning id, card_id, user_id, body, created_at`,
		cardID, userID, body).
		Scan(&c.ID, &c.CardID, &c.UserID, &c.Body, &c.CreatedAt)
	return c, err
}

func (s *Store) GetComment(ctx context.Context, cardID, commentID int64) (Comment, error) {
	var c Comment
	err := s.db.QueryRowContext(ctx,
		`select id, card_id, user_id, body, created_at from comments where card_id=$1 and id=$2`,
		cardID, commentID).
		Scan(&c.ID, &c.CardID, &c.UserID, &c.Body, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	return c, err
}

func (s *Store) CommentsByCard(ctx context.Context, cardID int64) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, card_id, user_id, body, created_at from comments where card_id=$1 order by id`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.CardID, &c.UserID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateComment(ctx context.Context, cardID, commentID int64, body string) error {
	res, err := s.db.ExecContext(ctx,
		`update comments set body=$1 where card_id=$2 and id=$3`, body, cardID, commentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, cardID, commentID int64) error {
	res, err := s.db.ExecContext(ctx, `delete from comments where card_id=$1 and id=$2`, cardID, commentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Checklists

func (s *Store) CreateCheckList(ctx context.Context, cardID int64, title string, position int64) (CheckList, error) {
	var cl CheckList
	err := s.db.QueryRowContext(ctx,
		`insert into checklists(card_id, title, position) values($1,$2,$3)
		 returning id, card_id, title, is_checked, position`,
		cardID, title, position).
		Scan(&cl.ID, &cl.CardID, &cl.Title, &cl.IsChecked, &cl.Position)
	return cl, err
}

func (s *Store) GetCheckList(ctx context.Context, cardID, checklistID int64) (CheckList, error) {
	var cl CheckList
	err := s.db.QueryRowContext(ctx,
		`select id, card_id, title, is_checked, position from checklists where card_id=$1 and id=$2`,
		cardID, checklistID).
		Scan(&cl.ID, &cl.CardID, &cl.Title, &cl.IsChecked, &cl.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return CheckList{}, ErrNotFound
	}
	return cl, err
}

func (s *Store) CheckListsByCard(ctx context.Context, cardID int64) ([]CheckList, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, card_id, title, is_checked, position from checklists where card_id=$1 order by position, id`,
		cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CheckList
	for rows.Next() {
		var cl CheckList
		if err := rows.Scan(&cl.ID, &cl.CardID, &cl.Title, &cl.IsChecked, &cl.Position); err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCheckList(ctx context.Context, cardID, checklistID int64, title *string, isChecked *bool, position *int64) error {
	set := []string{}
	args := []any{}
	idx := 1
	if title != nil {
		set = append(set, fmt.Sprintf("title=$%d", idx))
		args = append(args, *title)
		idx++
	}
	if isChecked != nil {
		set = append(set, fmt.Sprintf("is_checked=$%d", idx))
		args = append(args, *isChecked)
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
	args = append(args, cardID, checklistID)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("update checklists set %s where card_id=$%d and id=$%d", strings.Join(set, ", "), idx, idx+1),
		args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCheckList(ctx context.Context, cardID, checklistID int64) error {
	res, err := s.db.ExecContext(ctx, `delete from checklists where card_id=$1 and id=$2`, cardID, checklistID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Card members

func (s *Store) IsCardMember(ctx context.Context, cardID, userID int64) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from card_members where card_id=$1 and user_id=$2)`, cardID, userID).
		Scan(&ok)
	return ok, err
}

func (s *Store) AddCardMember(ctx context.Context, cardID, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`insert into card_members(card_id, user_id) values($1,$2) on conflict do nothing`, cardID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: already a card member", ErrConflict)
	}
	return nil
}

func (s *Store) RemoveCardMember(ctx context.Context, cardID, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`delete from card_members where card_id=$1 and user_id=$2`, cardID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CardMembersByCard(ctx context.Context, cardID int64) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select u.id, u.username, u.email, u.signup_date
		 from card_members m join users u on u.id=m.user_id
		 where m.card_id=$1 order by m.id`, cardID)
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

// Activity log. Append-only: there is deliberately no update or delete here.

func (s *Store) AddCardActivity(ctx context.Context, cardID, userID int64, activity string) (CardActivity, error) {
	var a CardActivity
	err := s.db.QueryRowContext(ctx,
		`insert into card_activities(card_id, user_id, activity) values($1,$2,$3)
		 returning id, card_id, user_id, activity, created_at`,
		cardID, userID, activity).
		Scan(&a.ID, &a.CardID, &a.UserID, &a.Activity, &a.CreatedAt)
	return a, err
}

func (s *Store) ActivitiesByCard(ctx context.Context, cardID int64) ([]CardActivity, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, card_id, user_id, activity, created_at from card_activities where card_id=$1 order by id`,
		cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CardActivity
	for rows.Next() {
		var a CardActivity
		if err := rows.Scan(&a.ID, &a.CardID, &a.UserID, &a.Activity, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Card labels

func (s *Store) AttachCardLabel(ctx context.Context, cardID, labelID int64) (CardLabel, error) {
	var cl CardLabel
	err := s.db.QueryRowContext(ctx,
		`insert into card_labels(card_id, label_id) values($1,$2)
		 on conflict do nothing
		 returning id, card_id, label_id`,
		cardID, labelID).
		Scan(&cl.ID, &cl.CardID, &cl.LabelID)
	if errors.Is(err, sql.ErrNoRows) {
		return CardLabel{}, fmt.Errorf("%w: label already attached", ErrConflict)
	}
	return cl, err
}

func (s *Store) CardLabelsByCard(ctx context.Context, cardID int64) ([]CardLabel, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, card_id, label_id from card_labels where card_id=$1 order by id`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CardLabel
	for rows.Next() {
		var cl CardLabel
		if err := rows.Scan(&cl.ID, &cl.CardID, &cl.LabelID); err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	return out, rows.Err()
}

func (s *Store) DetachCardLabel(ctx context.Context, cardID, labelID int64) error {
	res, err := s.db.ExecContext(ctx,
		`delete from card_labels where card_id=$1 and label_id=$2`, cardID, labelID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Attachments

func (s *Store) AddCardAttachment(ctx context.Context, cardID int64, filename, location string) (CardAttachment, error) {
	var at CardAttachment
	err := s.db.QueryRowContext(ctx,
		`insert into card_attachments(card_id, filename, location) values($1,$2,$3)
		 returning id, card_id, filename, location, uploaded_at`,
		cardID, filename, location).
		Scan(&at.ID, &at.CardID, &at.Filename, &at.Location, &at.UploadedAt)
	return at, err
}

func (s *Store) GetCardAttachment(ctx context.Context, cardID, attachmentID int64) (CardAttachment, error) {
	var at CardAttachment
	err := s.db.QueryRowContext(ctx,
		`select id, card_id, filename, location, uploaded_at from card_attachments where card_id=$1 and id=$2`,
		cardID, attachmentID).
		Scan(&at.ID, &at.CardID, &at.Filename, &at.Location, &at.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return CardAttachment{}, ErrNotFound
	}
	return at, err
}

func (s *Store) AttachmentsByCard(ctx context.Context, cardID int64) ([]CardAttachment, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, card_id, filename, location, uploaded_at from card_attachments where card_id=$1 order by id`,
		cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CardAttachment
	for rows.Next() {
		var at CardAttachment
		if err := rows.Scan(&at.ID, &at.CardID, &at.Filename, &at.Location, &at.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, at)
	}
	return out, rows.Err()
}

func (s *Store) DeleteCardAttachment(ctx context.Context, cardID, attachmentID int64) error {
	res, err := s.db.ExecContext(ctx,
		`delete from card_attachments where card_id=$1 and id=$2`, cardID, attachmentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
