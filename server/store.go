package main

import (
	"context"
	"database/sql"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// The unique indexes on board_members and card_members are the authoritative
// guard against duplicate membership; inserts go through "on conflict do
// nothing" so concurrent requests cannot race past the check. Email
// uniqueness is enforced on lower(email) so lookups and the duplicate guard
// agree on case.
// board_members deliberately has no "on delete cascade" from boards:
// DeleteBoard clears memberships itself inside one transaction.
const schema = `
create table if not exists users(
    id bigserial primary key,
    username text not null default '',
    email text not null,
    password_hash text not null,
    signup_date timestamptz not null default now()
);
create unique index if not exists users_email_lower_idx on users(lower(email));

create table if not exists boards(
    id bigserial primary key,
    owner_id bigint not null references users(id),
    name text not null check (length(name) > 0),
    is_public boolean not null default false,
    created_at timestamptz not null default now()
);
create index if not exists boards_owner_idx on boards(owner_id);

create table if not exists board_members(
    id bigserial primary key,
    board_id bigint not null references boards(id),
    user_id bigint not null references users(id),
    unique(board_id, user_id)
);

create table if not exists lists(
    id bigserial primary key,
    board_id bigint not null references boards(id) on delete cascade,
    name text not null check (length(name) > 0),
    position bigint not null default 0
);
create index if not exists lists_board_idx on lists(board_id);

create table if not exists cards(
    id bigserial primary key,
    list_id bigint not null references lists(id) on delete cascade,
    title text not null check (length(title) > 0),
    description text not null default '',
    is_active boolean not null default true,
    due_date timestamptz,
    reminder_at timestamptz,
    created_at timestamptz not null default now()
);
create index if not exists cards_list_idx on cards(list_id);

create table if not exists comments(
    id bigserial primary key,
    card_id bigint not null references cards(id) on delete cascade,
    user_id bigint not null references users(id),
    body text not null check (length(body) > 0),
    created_at timestamptz not null default now()
);
create index if not exists comments_card_idx on comments(card_id);

create table if not exists checklists(
    id bigserial primary key,
    card_id bigint not null references cards(id) on delete cascade,
    title text not null,
    is_checked boolean not null default false,
    position bigint not null default 0
);
create index if not exists checklists_card_idx on checklists(card_id);

create table if not exists card_members(
    id bigserial primary key,
    card_id bigint not null references cards(id) on delete cascade,
    user_id bigint not null references users(id),
    unique(card_id, user_id)
);

create table if not exists card_activities(
    id bigserial primary key,
    card_id bigint not null references cards(id) on delete cascade,
    user_id bigint not null references users(id),
    activity text not null,
    created_at timestamptz not null default now()
);
create index if not exists card_activities_card_idx on card_activities(card_id);

create table if not exists board_labels(
    id bigserial primary key,
    board_id bigint not null references boards(id) on delete cascade,
    name text not null,
    color text not null default ''
);
create index if not exists board_labels_board_idx on board_labels(board_id);

create table if not exists card_labels(
    id bigserial primary key,
    card_id bigint not null references cards(id) on delete cascade,
    label_id bigint not null references board_labels(id) on delete cascade,
    unique(card_id, label_id)
);

create table if not exists card_attachments(
    id bigserial primary key,
    card_id bigint not null references cards(id) on delete cascade,
    filename text not null,
    location text not null,
    uploaded_at timestamptz not null default now()
);
create index if not exists card_attachments_card_idx on card_attachments(card_id);
`
