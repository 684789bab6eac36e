package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore connects to the database named by TEST_DATABASE_URL and runs the
// migration. Without the variable the whole file is skipped, so `go test
// ./...` stays green on machines without Postgres.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewStore(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func newTestUser(t *testing.T, s *Store) User {
	t.Helper()
	email := uuid.NewString() + "@test.local"
	hash, err := hashPassword("pw")
	require.NoError(t, err)
	u, err := s.CreateUser(context.Background(), email, hash, "u-"+uuid.NewString()[:8])
	require.NoError(t, err)
	return u
}

func newTestBoard(t *testing.T, s *Store, owner User, public bool) Board {
	t.Helper()
	b, err := s.CreateBoard(context.Background(), owner.ID, "board-"+uuid.NewString()[:8], public)
	require.NoError(t, err)
	return b
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	email := uuid.NewString() + "@test.local"
	hash, _ := hashPassword("pw")
	_, err := s.CreateUser(ctx, email, hash, "first")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, email, hash, "second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestCreateUserDuplicateEmailIgnoresCase(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	email := uuid.NewString() + "@test.local"
	hash, _ := hashPassword("pw")
	u, err := s.CreateUser(ctx, email, hash, "first")
	require.NoError(t, err)

	// same address, different case: still one account
	_, err = s.CreateUser(ctx, strings.ToUpper(email), hash, "second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))

	got, err := s.UserByEmail(ctx, strings.ToUpper(email))
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	auth, err := s.Authenticate(ctx, strings.ToUpper(email), "pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, auth.ID)
}

func TestAuthenticate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := newTestUser(t, s)

	got, err := s.Authenticate(ctx, u.Email, "pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate(ctx, u.Email, "wrong")
	assert.True(t, errors.Is(err, ErrUnauthorized))

	_, err = s.Authenticate(ctx, "nobody-"+u.Email, "pw")
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestCreateBoardEnrollsOwnerOnce(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)

	ok, err := s.IsBoardMember(ctx, b.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	members, err := s.BoardMembers(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, owner.ID, members[0].ID)

	// re-adding the owner is a conflict, not a second row
	err = s.AddBoardMember(ctx, b.ID, owner.ID)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestBoardMembership(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	other := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)

	require.NoError(t, s.AddBoardMember(ctx, b.ID, other.ID))
	err := s.AddBoardMember(ctx, b.ID, other.ID)
	assert.True(t, errors.Is(err, ErrConflict))

	// the owner's membership cannot be removed
	err = s.RemoveBoardMember(ctx, b.ID, owner.ID)
	assert.True(t, errors.Is(err, ErrConflict))

	require.NoError(t, s.RemoveBoardMember(ctx, b.ID, other.ID))
	err = s.RemoveBoardMember(ctx, b.ID, other.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestVisibleBoard(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	stranger := newTestUser(t, s)

	private := newTestBoard(t, s, owner, false)
	public := newTestBoard(t, s, owner, true)

	_, err := s.VisibleBoard(ctx, public.ID, nil)
	assert.NoError(t, err)
	_, err = s.VisibleBoard(ctx, public.ID, &stranger)
	assert.NoError(t, err)

	_, err = s.VisibleBoard(ctx, private.ID, &owner)
	assert.NoError(t, err)
	_, err = s.VisibleBoard(ctx, private.ID, nil)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	_, err = s.VisibleBoard(ctx, private.ID, &stranger)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	_, err = s.VisibleBoard(ctx, private.ID+1_000_000, nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemberBoard(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	stranger := newTestUser(t, s)
	b := newTestBoard(t, s, owner, true)

	_, err := s.MemberBoard(ctx, b.ID, owner)
	assert.NoError(t, err)

	// public visibility does not grant mutation rights
	_, err = s.MemberBoard(ctx, b.ID, stranger)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestGetBoardOwned(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	other := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)

	_, err := s.GetBoardOwned(ctx, b.ID, owner.ID)
	assert.NoError(t, err)

	// non-owners see the same answer as a missing board
	_, err = s.GetBoardOwned(ctx, b.ID, other.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteBoardClearsMemberships(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	other := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)
	require.NoError(t, s.AddBoardMember(ctx, b.ID, other.ID))

	require.NoError(t, s.DeleteBoard(ctx, b.ID))

	_, err := s.GetBoard(ctx, b.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	ok, err := s.IsBoardMember(ctx, b.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScopedLookups(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	b1 := newTestBoard(t, s, owner, false)
	b2 := newTestBoard(t, s, owner, false)

	l1, err := s.CreateList(ctx, b1.ID, "To Do", 0)
	require.NoError(t, err)
	l2, err := s.CreateList(ctx, b2.ID, "Other", 0)
	require.NoError(t, err)

	c1, err := s.CreateCard(ctx, l1.ID, "task", "", nil, nil)
	require.NoError(t, err)

	// a real id under the wrong parent reads as missing
	_, err = s.GetList(ctx, b2.ID, l1.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = s.GetCard(ctx, l2.ID, c1.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.GetCard(ctx, l1.ID, c1.ID)
	assert.NoError(t, err)
}

func TestUpdateCardPartial(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)
	l, err := s.CreateList(ctx, b.ID, "To Do", 0)
	require.NoError(t, err)

	due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	c, err := s.CreateCard(ctx, l.ID, "title", "desc", &due, nil)
	require.NoError(t, err)

	newTitle := "renamed"
	require.NoError(t, s.UpdateCard(ctx, l.ID, c.ID, CardUpdate{Title: &newTitle}))

	got, err := s.GetCard(ctx, l.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, "desc", got.Description)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
}

func TestMoveCardAcrossLists(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)
	from, err := s.CreateList(ctx, b.ID, "From", 0)
	require.NoError(t, err)
	to, err := s.CreateList(ctx, b.ID, "To", 1)
	require.NoError(t, err)
	c, err := s.CreateCard(ctx, from.ID, "task", "", nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.UpdateCard(ctx, from.ID, c.ID, CardUpdate{ListID: &to.ID}))

	_, err = s.GetCard(ctx, from.ID, c.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	got, err := s.GetCard(ctx, to.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, to.ID, got.ListID)
}

func TestArchiveRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)
	l, err := s.CreateList(ctx, b.ID, "To Do", 0)
	require.NoError(t, err)
	c, err := s.CreateCard(ctx, l.ID, "task", "", nil, nil)
	require.NoError(t, err)
	assert.True(t, c.IsActive)

	require.NoError(t, s.SetCardArchived(ctx, l.ID, c.ID, true))
	got, err := s.GetCard(ctx, l.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.NoError(t, s.SetCardArchived(ctx, l.ID, c.ID, false))
	got, err = s.GetCard(ctx, l.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestCardMembers(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	other := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)
	l, err := s.CreateList(ctx, b.ID, "To Do", 0)
	require.NoError(t, err)
	c, err := s.CreateCard(ctx, l.ID, "task", "", nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.AddCardMember(ctx, c.ID, other.ID))
	err = s.AddCardMember(ctx, c.ID, other.ID)
	assert.True(t, errors.Is(err, ErrConflict))

	members, err := s.CardMembersByCard(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, other.ID, members[0].ID)

	require.NoError(t, s.RemoveCardMember(ctx, c.ID, other.ID))
	err = s.RemoveCardMember(ctx, c.ID, other.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCardActivityAppendOnly(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)
	l, err := s.CreateList(ctx, b.ID, "To Do", 0)
	require.NoError(t, err)
	c, err := s.CreateCard(ctx, l.ID, "task", "", nil, nil)
	require.NoError(t, err)

	for _, msg := range []string{
		activityCardCreated(owner, l),
		activityCardArchived(owner),
		activityCardUnarchived(owner),
	} {
		_, err := s.AddCardActivity(ctx, c.ID, owner.ID, msg)
		require.NoError(t, err)
	}

	items, err := s.ActivitiesByCard(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Contains(t, items[0].Activity, "added this card")
	assert.Contains(t, items[1].Activity, "archived this card")
	assert.Contains(t, items[2].Activity, "unarchived this card")
}

func TestBoardLabels(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)

	lb, err := s.CreateBoardLabel(ctx, b.ID, "bug", "#ff0000")
	require.NoError(t, err)

	name := "defect"
	require.NoError(t, s.UpdateBoardLabel(ctx, b.ID, lb.ID, &name, nil))
	got, err := s.GetBoardLabel(ctx, b.ID, lb.ID)
	require.NoError(t, err)
	assert.Equal(t, "defect", got.Name)
	assert.Equal(t, "#ff0000", got.Color)

	// label ids do not resolve under another board
	other := newTestBoard(t, s, owner, false)
	_, err = s.GetBoardLabel(ctx, other.ID, lb.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.DeleteBoardLabel(ctx, b.ID, lb.ID))
	_, err = s.GetBoardLabel(ctx, b.ID, lb.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCardLabels(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)
	l, err := s.CreateList(ctx, b.ID, "To Do", 0)
	require.NoError(t, err)
	c, err := s.CreateCard(ctx, l.ID, "task", "", nil, nil)
	require.NoError(t, err)
	lb, err := s.CreateBoardLabel(ctx, b.ID, "bug", "#ff0000")
	require.NoError(t, err)

	_, err = s.AttachCardLabel(ctx, c.ID, lb.ID)
	require.NoError(t, err)
	_, err = s.AttachCardLabel(ctx, c.ID, lb.ID)
	assert.True(t, errors.Is(err, ErrConflict))

	items, err := s.CardLabelsByCard(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, lb.ID, items[0].LabelID)

	require.NoError(t, s.DetachCardLabel(ctx, c.ID, lb.ID))
	err = s.DetachCardLabel(ctx, c.ID, lb.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestComments(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)
	l, err := s.CreateList(ctx, b.ID, "To Do", 0)
	require.NoError(t, err)
	c, err := s.CreateCard(ctx, l.ID, "task", "", nil, nil)
	require.NoError(t, err)

	cm, err := s.AddComment(ctx, c.ID, owner.ID, "first")
	require.NoError(t, err)

	require.NoError(t, s.UpdateComment(ctx, c.ID, cm.ID, "edited"))
	got, err := s.GetComment(ctx, c.ID, cm.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Body)

	require.NoError(t, s.DeleteComment(ctx, c.ID, cm.ID))
	_, err = s.GetComment(ctx, c.ID, cm.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCheckLists(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)
	l, err := s.CreateList(ctx, b.ID, "To Do", 0)
	require.NoError(t, err)
	c, err := s.CreateCard(ctx, l.ID, "task", "", nil, nil)
	require.NoError(t, err)

	cl, err := s.CreateCheckList(ctx, c.ID, "step one", 0)
	require.NoError(t, err)
	assert.False(t, cl.IsChecked)

	checked := true
	require.NoError(t, s.UpdateCheckList(ctx, c.ID, cl.ID, nil, &checked, nil))
	got, err := s.GetCheckList(ctx, c.ID, cl.ID)
	require.NoError(t, err)
	assert.True(t, got.IsChecked)
	assert.Equal(t, "step one", got.Title)

	require.NoError(t, s.DeleteCheckList(ctx, c.ID, cl.ID))
	_, err = s.GetCheckList(ctx, c.ID, cl.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAttachmentsMetadata(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := newTestUser(t, s)
	b := newTestBoard(t, s, owner, false)
	l, err := s.CreateList(ctx, b.ID, "To Do", 0)
	require.NoError(t, err)
	c, err := s.CreateCard(ctx, l.ID, "task", "", nil, nil)
	require.NoError(t, err)

	location := fmt.Sprintf("/tmp/%s.pdf", uuid.NewString())
	at, err := s.AddCardAttachment(ctx, c.ID, "report.pdf", location)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", at.Filename)

	got, err := s.GetCardAttachment(ctx, c.ID, at.ID)
	require.NoError(t, err)
	assert.Equal(t, location, got.Location)

	require.NoError(t, s.DeleteCardAttachment(ctx, c.ID, at.ID))
	_, err = s.GetCardAttachment(ctx, c.ID, at.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
