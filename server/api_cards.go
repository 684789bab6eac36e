package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

func (a *api) handleCardsByList(w http.ResponseWriter, r *http.Request) {
	_, b, err := a.visibleBoard(r)
	if err != nil {
		a.fail(w, "cards by list", err)
		return
	}
	l, err := a.pathList(r, b.ID)
	if err != nil {
		a.fail(w, "cards by list", err)
		return
	}
	items, err := a.store.CardsByList(r.Context(), l.ID)
	if err != nil {
		a.fail(w, "cards by list", err)
		return
	}
	writeJSON(w, 200, items)
}

func (a *api) handleGetCard(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.visibleCard(r)
	if err != nil {
		a.fail(w, "get card", err)
		return
	}
	writeJSON(w, 200, c)
}

func (a *api) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	u, l, err := a.memberList(r)
	if err != nil {
		a.fail(w, "create card", err)
		return
	}
	var req struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		DueDate     *time.Time `json:"due_date"`
		ReminderAt  *time.Time `json:"reminder_datetime"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Title) == "" {
		a.fail(w, "create card", fmt.Errorf("%w: title required", ErrInvalidInput))
		return
	}
	c, err := a.store.CreateCard(r.Context(), l.ID, strings.TrimSpace(req.Title), req.Description, req.DueDate, req.ReminderAt)
	if err != nil {
		a.fail(w, "create card", err)
		return
	}
	if _, err := a.store.AddCardActivity(r.Context(), c.ID, u.ID, activityCardCreated(u, l)); err != nil {
		a.log.Error("append activity", "err", err)
	}
	writeJSON(w, 201, c)
}

func (a *api) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	u, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "update card", err)
		return
	}
	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		ListID      *int64     `json:"list_id"`
		DueDate     *time.Time `json:"due_date"`
		ReminderAt  *time.Time `json:"reminder_datetime"`
	}
	if err := readJSON(w, r, &req); err != nil {
		a.fail(w, "update card", fmt.Errorf("%w: bad payload", ErrInvalidInput))
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		a.fail(w, "update card", fmt.Errorf("%w: title cannot be empty", ErrInvalidInput))
		return
	}
	// A move target must resolve within the same board.
	if req.ListID != nil {
		b, _ := a.pathBoardID(r)
		if _, err := a.store.GetList(r.Context(), b, *req.ListID); err != nil {
			a.fail(w, "update card", err)
			return
		}
	}
	upd := CardUpdate{
		Title:       req.Title,
		Description: req.Description,
		ListID:      req.ListID,
		DueDate:     req.DueDate,
		ReminderAt:  req.ReminderAt,
	}
	if err := a.store.UpdateCard(r.Context(), c.ListID, c.ID, upd); err != nil {
		a.fail(w, "update card", err)
		return
	}
	if req.DueDate != nil {
		if _, err := a.store.AddCardActivity(r.Context(), c.ID, u.ID, activityDueDateSet(u, *req.DueDate)); err != nil {
			a.log.Error("append activity", "err", err)
		}
	}
	listID := c.ListID
	if req.ListID != nil {
		listID = *req.ListID
	}
	updated, err := a.store.GetCard(r.Context(), listID, c.ID)
	if err != nil {
		a.fail(w, "update card", err)
		return
	}
	writeJSON(w, 200, updated)
}

func (a *api) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "delete card", err)
		return
	}
	if err := a.store.DeleteCard(r.Context(), c.ListID, c.ID); err != nil {
		a.fail(w, "delete card", err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

func (a *api) handleArchiveCard(w http.ResponseWriter, r *http.Request) {
	u, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "archive card", err)
		return
	}
	if err := a.store.SetCardArchived(r.Context(), c.ListID, c.ID, true); err != nil {
		a.fail(w, "archive card", err)
		return
	}
	if _, err := a.store.AddCardActivity(r.Context(), c.ID, u.ID, activityCardArchived(u)); err != nil {
		a.log.Error("append activity", "err", err)
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

func (a *api) handleUnarchiveCard(w http.ResponseWriter, r *http.Request) {
	u, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "unarchive card", err)
		return
	}
	if err := a.store.SetCardArchived(r.Context(), c.ListID, c.ID, false); err != nil {
		a.fail(w, "unarchive card", err)
		return
	}
	if _, err := a.store.AddCardActivity(r.Context(), c.ID, u.ID, activityCardUnarchived(u)); err != nil {
		a.log.Error("append activity", "err", err)
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

// Comments

func (a *api) handleCommentsByCard(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.visibleCard(r)
	if err != nil {
		a.fail(w, "comments by card", err)
		return
	}
	items, err := a.store.CommentsByCard(r.Context(), c.ID)
	if err != nil {
		a.fail(w, "comments by card", err)
		return
	}
	writeJSON(w, 200, items)
}

func (a *api) handleAddComment(w http.ResponseWriter, r *http.Request) {
	u, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "add comment", err)
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Body) == "" {
		a.fail(w, "add comment", fmt.Errorf("%w: body required", ErrInvalidInput))
		return
	}
	cm, err := a.store.AddComment(r.Context(), c.ID, u.ID, req.Body)
	if err != nil {
		a.fail(w, "add comment", err)
		return
	}
	writeJSON(w, 201, cm)
}

func (a *api) handleGetComment(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.visibleCard(r)
	if err != nil {
		a.fail(w, "get comment", err)
		return
	}
	id, err := parseID(r.PathValue("commentID"))
	if err != nil {
		a.fail(w, "get comment", fmt.Errorf("%w: bad comment id", ErrInvalidInput))
		return
	}
	cm, err := a.store.GetComment(r.Context(), c.ID, id)
	if err != nil {
		a.fail(w, "get comment", err)
		return
	}
	writeJSON(w, 200, cm)
}

// authoredComment loads the comment and enforces that the caller wrote it.
func (a *api) authoredComment(r *http.Request, u User, cardID int64) (Comment, error) {
	id, err := parseID(r.PathValue("commentID"))
	if err != nil {
		return Comment{}, fmt.Errorf("%w: bad comment id", ErrInvalidInput)
	}
	cm, err := a.store.GetComment(r.Context(), cardID, id)
	if err != nil {
		return Comment{}, err
	}
	if cm.UserID != u.ID {
		return Comment{}, fmt.Errorf("%w: not the comment author", ErrForbidden)
	}
	return cm, nil
}

func (a *api) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	u, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "update comment", err)
		return
	}
	cm, err := a.authoredComment(r, u, c.ID)
	if err != nil {
		a.fail(w, "update comment", err)
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Body) == "" {
		a.fail(w, "update comment", fmt.Errorf("%w: body required", ErrInvalidInput))
		return
	}
	if err := a.store.UpdateComment(r.Context(), c.ID, cm.ID, req.Body); err != nil {
		a.fail(w, "update comment", err)
		return
	}
	updated, err := a.store.GetComment(r.Context(), c.ID, cm.ID)
	if err != nil {
		a.fail(w, "update comment", err)
		return
	}
	writeJSON(w, 200, updated)
}

func (a *api) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	u, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "delete comment", err)
		return
	}
	cm, err := a.authoredComment(r, u, c.ID)
	if err != nil {
		a.fail(w, "delete comment", err)
		return
	}
	if err := a.store.DeleteComment(r.Context(), c.ID, cm.ID); err != nil {
		a.fail(w, "delete comment", err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

// Checklists

func (a *api) handleCheckListsByCard(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.visibleCard(r)
	if err != nil {
		a.fail(w, "checklists by card", err)
		return
	}
	items, err := a.store.CheckListsByCard(r.Context(), c.ID)
	if err != nil {
		a.fail(w, "checklists by card", err)
		return
	}
	writeJSON(w, 200, items)
}

func (a *api) handleGetCheckList(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.visibleCard(r)
	if err != nil {
		a.fail(w, "get checklist", err)
		return
	}
	id, err := parseID(r.PathValue("checklistID"))
	if err != nil {
		a.fail(w, "get checklist", fmt.Errorf("%w: bad checklist id", ErrInvalidInput))
		return
	}
	cl, err := a.store.GetCheckList(r.Context(), c.ID, id)
	if err != nil {
		a.fail(w, "get checklist", err)
		return
	}
	writeJSON(w, 200, cl)
}

func (a *api) handleCreateCheckList(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "create checklist", err)
		return
	}
	var req struct {
		Title    string `json:"title"`
		Position int64  `json:"position"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Title) == "" {
		a.fail(w, "create checklist", fmt.Errorf("%w: title required", ErrInvalidInput))
		return
	}
	cl, err := a.store.CreateCheckList(r.Context(), c.ID, strings.TrimSpace(req.Title), req.Position)
	if err != nil {
		a.fail(w, "create checklist", err)
		return
	}
	writeJSON(w, 201, cl)
}

func (a *api) handleUpdateCheckList(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "update checklist", err)
		return
	}
	id, err := parseID(r.PathValue("checklistID"))
	if err != nil {
		a.fail(w, "update checklist", fmt.Errorf("%w: bad checklist id", ErrInvalidInput))
		return
	}
	var req struct {
		Title     *string `json:"title"`
		IsChecked *bool   `json:"is_checked"`
		Position  *int64  `json:"position"`
	}
	if err := readJSON(w, r, &req); err != nil {
		a.fail(w, "update checklist", fmt.Errorf("%w: bad payload", ErrInvalidInput))
		return
	}
	if err := a.store.UpdateCheckList(r.Context(), c.ID, id, req.Title, req.IsChecked, req.Position); err != nil {
		a.fail(w, "update checklist", err)
		return
	}
	updated, err := a.store.GetCheckList(r.Context(), c.ID, id)
	if err != nil {
		a.fail(w, "update checklist", err)
		return
	}
	writeJSON(w, 200, updated)
}

func (a *api) handleDeleteCheckList(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "delete checklist", err)
		return
	}
	id, err := parseID(r.PathValue("checklistID"))
	if err != nil {
		a.fail(w, "delete checklist", fmt.Errorf("%w: bad checklist id", ErrInvalidInput))
		return
	}
	if err := a.store.DeleteCheckList(r.Context(), c.ID, id); err != nil {
		a.fail(w, "delete checklist", err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

// Card members

func (a *api) handleCardMembers(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "card members", err)
		return
	}
	items, err := a.store.CardMembersByCard(r.Context(), c.ID)
	if err != nil {
		a.fail(w, "card members", err)
		return
	}
	writeJSON(w, 200, items)
}

// handleAddCardMember: the target must exist, must already be on the board,
// and must not already be on the card. Success lands in the activity log.
func (a *api) handleAddCardMember(w http.ResponseWriter, r *http.Request) {
	u, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "add card member", err)
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		a.fail(w, "add card member", fmt.Errorf("%w: email required", ErrInvalidInput))
		return
	}
	target, err := a.store.UserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		a.fail(w, "add card member", err)
		return
	}
	boardID, _ := a.pathBoardID(r)
	onBoard, err := a.store.IsBoardMember(r.Context(), boardID, target.ID)
	if err != nil {
		a.fail(w, "add card member", err)
		return
	}
	if !onBoard {
		a.fail(w, "add card member", fmt.Errorf("%w: user is not a board member", ErrForbidden))
		return
	}
	if err := a.store.AddCardMember(r.Context(), c.ID, target.ID); err != nil {
		a.fail(w, "add card member", err)
		return
	}
	if _, err := a.store.AddCardActivity(r.Context(), c.ID, u.ID, activityMemberAdded(u, target)); err != nil {
		a.log.Error("append activity", "err", err)
	}
	writeJSON(w, 201, map[string]any{"ok": true})
}

func (a *api) handleRemoveCardMember(w http.ResponseWriter, r *http.Request) {
	u, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "remove card member", err)
		return
	}
	uid, err := parseID(r.PathValue("userID"))
	if err != nil {
		a.fail(w, "remove card member", fmt.Errorf("%w: bad user id", ErrInvalidInput))
		return
	}
	target, err := a.store.UserByID(r.Context(), uid)
	if err != nil {
		a.fail(w, "remove card member", err)
		return
	}
	if err := a.store.RemoveCardMember(r.Context(), c.ID, target.ID); err != nil {
		a.fail(w, "remove card member", err)
		return
	}
	if _, err := a.store.AddCardActivity(r.Context(), c.ID, u.ID, activityMemberRemoved(u, target)); err != nil {
		a.log.Error("append activity", "err", err)
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

// Activity

func (a *api) handleCardActivity(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "card activity", err)
		return
	}
	items, err := a.store.ActivitiesByCard(r.Context(), c.ID)
	if err != nil {
		a.fail(w, "card activity", err)
		return
	}
	writeJSON(w, 200, items)
}

// Labels

func (a *api) handleCardLabels(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.visibleCard(r)
	if err != nil {
		a.fail(w, "card labels", err)
		return
	}
	items, err := a.store.CardLabelsByCard(r.Context(), c.ID)
	if err != nil {
		a.fail(w, "card labels", err)
		return
	}
	writeJSON(w, 200, items)
}

// handleAttachCardLabel validates the label against the board's own label
// set before linking; a label id from another board reads as missing.
func (a *api) handleAttachCardLabel(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "attach card label", err)
		return
	}
	var req struct {
		LabelID int64 `json:"label_id"`
	}
	if err := readJSON(w, r, &req); err != nil || req.LabelID == 0 {
		a.fail(w, "attach card label", fmt.Errorf("%w: label_id required", ErrInvalidInput))
		return
	}
	boardID, _ := a.pathBoardID(r)
	if _, err := a.store.GetBoardLabel(r.Context(), boardID, req.LabelID); err != nil {
		a.fail(w, "attach card label", err)
		return
	}
	cl, err := a.store.AttachCardLabel(r.Context(), c.ID, req.LabelID)
	if err != nil {
		a.fail(w, "attach card label", err)
		return
	}
	writeJSON(w, 201, cl)
}

func (a *api) handleDetachCardLabel(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "detach card label", err)
		return
	}
	id, err := parseID(r.PathValue("labelID"))
	if err != nil {
		a.fail(w, "detach card label", fmt.Errorf("%w: bad label id", ErrInvalidInput))
		return
	}
	if err := a.store.DetachCardLabel(r.Context(), c.ID, id); err != nil {
		a.fail(w, "detach card label", err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

// Attachments

func (a *api) handleAttachmentsByCard(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.visibleCard(r)
	if err != nil {
		a.fail(w, "attachments by card", err)
		return
	}
	items, err := a.store.AttachmentsByCard(r.Context(), c.ID)
	if err != nil {
		a.fail(w, "attachments by card", err)
		return
	}
	writeJSON(w, 200, items)
}

func (a *api) handleAddAttachment(w http.ResponseWriter, r *http.Request) {
	u, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "add attachment", err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		a.fail(w, "add attachment", fmt.Errorf("%w: file field required", ErrInvalidInput))
		return
	}
	defer file.Close()
	location, err := a.files.Save(header.Filename, file)
	if err != nil {
		a.fail(w, "save attachment", err)
		return
	}
	at, err := a.store.AddCardAttachment(r.Context(), c.ID, header.Filename, location)
	if err != nil {
		_ = a.files.Remove(location)
		a.fail(w, "add attachment", err)
		return
	}
	if _, err := a.store.AddCardActivity(r.Context(), c.ID, u.ID, activityFileAttached(u, header.Filename)); err != nil {
		a.log.Error("append activity", "err", err)
	}
	writeJSON(w, 201, at)
}

func (a *api) handleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.memberCard(r)
	if err != nil {
		a.fail(w, "delete attachment", err)
		return
	}
	id, err := parseID(r.PathValue("attachmentID"))
	if err != nil {
		a.fail(w, "delete attachment", fmt.Errorf("%w: bad attachment id", ErrInvalidInput))
		return
	}
	at, err := a.store.GetCardAttachment(r.Context(), c.ID, id)
	if err != nil {
		a.fail(w, "delete attachment", err)
		return
	}
	if err := a.store.DeleteCardAttachment(r.Context(), c.ID, at.ID); err != nil {
		a.fail(w, "delete attachment", err)
		return
	}
	if err := a.files.Remove(at.Location); err != nil {
		a.log.Error("remove attachment file", "err", err)
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}
