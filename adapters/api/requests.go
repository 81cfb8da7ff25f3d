package api

import (
	"bytes"
	"encoding/json"

	"troopstats/app"
	"troopstats/domain/core"
)

type createGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type joinGroupRequest struct {
	Code string `json:"code" binding:"required"`
}

type addParticipantRequest struct {
	Name string `json:"name" binding:"required"`
	// Self links the participant to the caller for the profile page
	Self bool `json:"self"`
}

type logEntryRequest struct {
	ParticipantID core.ParticipantID `json:"participant_id" binding:"required"`
	Date          string             `json:"date"`
	Hang          rawSeconds         `json:"hang"`
	Med           rawSeconds         `json:"med"`
}

// rawSeconds accepts a JSON number or string as typed into the form and
// keeps its text for clamping.
type rawSeconds string

func (r *rawSeconds) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = rawSeconds(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	*r = rawSeconds(b)
	return nil
}

type migrationFailureResponse struct {
	Stage    app.MigrationStage `json:"stage"`
	LegacyID string             `json:"legacy_id"`
	Error    string             `json:"error"`
}

type participantOutcomeResponse struct {
	app.ParticipantOutcome
	Error string `json:"error,omitempty"`
}

type migrationResponse struct {
	GroupID         core.GroupID                 `json:"group_id"`
	Migrated        int                          `json:"migrated"`
	Skipped         int                          `json:"skipped"`
	EntriesUpserted int                          `json:"entries_upserted"`
	EntriesDropped  int                          `json:"entries_dropped"`
	Partial         bool                         `json:"partial"`
	Participants    []participantOutcomeResponse `json:"participants"`
	Failures        []migrationFailureResponse   `json:"failures"`
}

func newMigrationResponse(r *app.MigrationResult) migrationResponse {
	resp := migrationResponse{
		GroupID:         r.GroupID,
		Migrated:        r.Migrated,
		Skipped:         r.Skipped,
		EntriesUpserted: r.EntriesUpserted,
		EntriesDropped:  r.EntriesDropped,
		Partial:         r.Partial(),
		Participants:    make([]participantOutcomeResponse, 0, len(r.Participants)),
		Failures:        make([]migrationFailureResponse, 0, len(r.Failures)),
	}
	for _, o := range r.Participants {
		out := participantOutcomeResponse{ParticipantOutcome: o}
		if o.Err != nil {
			out.Error = o.Err.Error()
		}
		resp.Participants = append(resp.Participants, out)
	}
	for _, f := range r.Failures {
		resp.Failures = append(resp.Failures, migrationFailureResponse{
			Stage:    f.Stage,
			LegacyID: f.LegacyID,
			Error:    f.Err.Error(),
		})
	}
	return resp
}
