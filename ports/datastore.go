package ports

import (
	"context"

	"troopstats/domain/core"
	"troopstats/domain/troop"
)

// DataStore is the capability the engine writes through. Implementations
// already enforce who may read or write which records.
type DataStore interface {
	// GetGroup resolves a group, returning core.ErrGroupNotFound when absent
	GetGroup(ctx context.Context, id core.GroupID) (*troop.Group, error)

	// ListParticipants returns a group's participants in creation order
	ListParticipants(ctx context.Context, groupID core.GroupID) ([]troop.Participant, error)

	// FetchGroupEntries returns the group's whole log
	FetchGroupEntries(ctx context.Context, groupID core.GroupID) (troop.EntrySet, error)

	// InsertParticipant stores a new participant and assigns its durable ID.
	// A case-insensitive name clash in the group returns core.ErrDuplicateName.
	InsertParticipant(ctx context.Context, p *troop.Participant) error

	// UpsertEntries writes entries keyed by (group, participant, date),
	// replacing existing rows on conflict
	UpsertEntries(ctx context.Context, entries []troop.Entry) error

	// DeleteParticipant removes a participant together with all its entries
	DeleteParticipant(ctx context.Context, groupID core.GroupID, participantID core.ParticipantID) error
}

// GroupStore covers troop creation and membership
type GroupStore interface {
	CreateGroup(ctx context.Context, g *troop.Group) error
	GetGroupByJoinCode(ctx context.Context, code string) (*troop.Group, error)
	AddMember(ctx context.Context, m troop.Member) error
	ListGroupsForUser(ctx context.Context, userID core.UserID) ([]troop.Group, error)
	ListParticipantsForUser(ctx context.Context, userID core.UserID) ([]troop.Participant, error)
}

// Store is the full persistence surface used by the services
type Store interface {
	DataStore
	GroupStore
}
