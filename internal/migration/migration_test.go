package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunnerSteps(t *testing.T) {
	r := NewRunner()
	assert.Equal(t, "1.0.0", r.Version())

	steps := r.steps()
	assert.Len(t, steps, 5)
	for _, s := range steps {
		assert.Contains(t, s.sql, "IF NOT EXISTS", s.name)
	}
}

func TestSchemaConstraintNames(t *testing.T) {
	// adapters/postgres maps unique violations by these names
	assert.True(t, strings.Contains(createGroupsTable, "groups_join_code_key"))
	assert.True(t, strings.Contains(createGroupMembersTable, "group_members_pkey"))
	assert.True(t, strings.Contains(createIndexes, "participants_group_name_key"))
	assert.True(t, strings.Contains(createEntriesTable, "PRIMARY KEY (group_id, participant_id, date)"))
}
