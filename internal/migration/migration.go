package migration

import (
	"context"

	"troopstats/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the troop schema. Every step is idempotent.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, step := range r.steps() {
		if _, err := db.ExecContext(ctx, step.sql); err != nil {
			return errors.Wrapf(err, "failed to %s", step.name)
		}
	}
	return nil
}

type step struct {
	name string
	sql  string
}

func (r *MigrationRunner) steps() []step {
	return []step{
		{"create groups table", createGroupsTable},
		{"create group_members table", createGroupMembersTable},
		{"create participants table", createParticipantsTable},
		{"create entries table", createEntriesTable},
		{"create indexes", createIndexes},
	}
}

const createGroupsTable = `
	CREATE TABLE IF NOT EXISTS groups (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL CHECK (btrim(name) <> ''),
		join_code CHAR(8) NOT NULL,
		owner_id TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		CONSTRAINT groups_join_code_key UNIQUE (join_code)
	)`

const createGroupMembersTable = `
	CREATE TABLE IF NOT EXISTS group_members (
		group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		joined_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		CONSTRAINT group_members_pkey PRIMARY KEY (group_id, user_id)
	)`

const createParticipantsTable = `
	CREATE TABLE IF NOT EXISTS participants (
		id UUID PRIMARY KEY,
		group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL CHECK (btrim(name) <> ''),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`

// entries reference participants without ON DELETE CASCADE: the store
// deletes them explicitly in the same transaction as the participant.
const createEntriesTable = `
	CREATE TABLE IF NOT EXISTS entries (
		group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		participant_id UUID NOT NULL REFERENCES participants(id),
		date DATE NOT NULL,
		hang_seconds INTEGER NOT NULL DEFAULT 0 CHECK (hang_seconds >= 0),
		med_seconds INTEGER NOT NULL DEFAULT 0 CHECK (med_seconds >= 0),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		CONSTRAINT entries_pkey PRIMARY KEY (group_id, participant_id, date)
	)`

const createIndexes = `
	CREATE UNIQUE INDEX IF NOT EXISTS participants_group_name_key ON participants (group_id, lower(name));
	CREATE INDEX IF NOT EXISTS participants_user_id_idx ON participants (user_id) WHERE user_id <> '';
	CREATE INDEX IF NOT EXISTS group_members_user_id_idx ON group_members (user_id);
	CREATE INDEX IF NOT EXISTS entries_group_date_idx ON entries (group_id, date)`
