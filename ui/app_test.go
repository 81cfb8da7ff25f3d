package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"troopstats/adapters/memory"
	"troopstats/app"
	"troopstats/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *app.TroopService) {
	t.Helper()
	store := memory.NewStore()
	boards := app.NewLeaderboardService(store, nil, nil)
	troops := app.NewTroopService(store, boards, time.UTC, nil)
	a, err := NewApp(boards, troops, nil)
	require.NoError(t, err)
	return a, troops
}

func get(a *App, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLeaderboardPage(t *testing.T) {
	ctx := context.Background()
	a, troops := newTestApp(t)

	group, err := troops.CreateGroup(ctx, "Dawn <Patrol>", "owner")
	require.NoError(t, err)
	ana, err := troops.AddParticipant(ctx, group.ID, "Ana", "")
	require.NoError(t, err)
	_, err = troops.AddParticipant(ctx, group.ID, "Ben", "")
	require.NoError(t, err)
	_, err = troops.LogEntry(ctx, group.ID, ana.ID, core.MustParseDate("2024-01-01"), "125", "60")
	require.NoError(t, err)

	rec := get(a, "/troops/"+group.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Dawn &lt;Patrol&gt;")
	assert.Contains(t, body, "2m 5s")
	assert.Contains(t, body, "1 day")
	assert.Contains(t, body, "🔥")
	assert.True(t, strings.Index(body, "Ana") < strings.Index(body, "Ben"))
	// Ben never logged: every metric shows the no-data marker
	benRow := body[strings.Index(body, "Ben"):]
	assert.Contains(t, benRow[:strings.Index(benRow, "</tr>")], `<td class="num">-</td>`)
}

func TestLeaderboardPageUnknownGroup(t *testing.T) {
	a, _ := newTestApp(t)
	rec := get(a, "/troops/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJoinCodeRedirect(t *testing.T) {
	a, troops := newTestApp(t)
	group, err := troops.CreateGroup(context.Background(), "Crew", "owner")
	require.NoError(t, err)

	rec := get(a, "/join?code="+strings.ToLower(group.JoinCode))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/troops/"+group.ID.String(), rec.Header().Get("Location"))

	rec = get(a, "/join?code=NOPE")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No troop uses that code.")
}

func TestIndexPage(t *testing.T) {
	a, _ := newTestApp(t)
	rec := get(a, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Join code")
}
