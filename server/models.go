package main

import "time"

type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	SignupDate time.Time `json:"signup_date"`
}

type Board struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

type BoardMember struct {
	ID      int64 `json:"id"`
	BoardID int64 `json:"board_id"`
	UserID  int64 `json:"user_id"`
}

type List struct {
	ID      int64  `json:"id"`
	BoardID int64  `json:"board_id"`
	Name    string `json:"name"`
	// Position orders lists within a board. Not necessarily contiguous;
	// the client maintains whatever ordering it wants.
	Position int64 `json:"position"`
}

type Card struct {
	ID          int64      `json:"id"`
	ListID      int64      `json:"list_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsActive    bool       `json:"is_active"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ReminderAt  *time.Time `json:"reminder_datetime,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Comment struct {
	ID        int64     `json:"id"`
	CardID    int64     `json:"card_id"`
	UserID    int64     `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type CheckList struct {
	ID        int64  `json:"id"`
	CardID    int64  `json:"card_id"`
	Title     string `json:"title"`
	IsChecked bool   `json:"is_checked"`
	Position  int64  `json:"position"`
}

type CardMember struct {
	ID     int64 `json:"id"`
	CardID int64 `json:"card_id"`
	UserID int64 `json:"user_id"`
}

// CardActivity rows are append-only; nothing updates or deletes them.
type CardActivity struct {
	ID        int64     `json:"id"`
	CardID    int64     `json:"card_id"`
	UserID    int64     `json:"user_id"`
	Activity  string    `json:"activity"`
	CreatedAt time.Time `json:"created_at"`
}

type BoardLabel struct {
	ID      int64  `json:"id"`
	BoardID int64  `json:"board_id"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
}

type CardLabel struct {
	ID      int64 `json:"id"`
	CardID  int64 `json:"card_id"`
	LabelID int64 `json:"label_id"`
}

type CardAttachment struct {
	ID       int64  `json:"id"`
	CardID   int64  `json:"card_id"`
	Filename string `json:"filename"`
	// Location is opaque to callers; only the file layer interprets it.
	Location   string    `json:"location"`
	UploadedAt time.Time `json:"uploaded_at"`
}
