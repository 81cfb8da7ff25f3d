// Package ui serves the read-only leaderboard page.
package ui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"troopstats/app"
	"troopstats/domain/core"
	"troopstats/domain/leaderboard"
	"troopstats/domain/troop"
	"troopstats/internal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed pages/*.html
var embeddedFiles embed.FS

// Boards is what the page reads from
type Boards interface {
	Leaderboard(ctx context.Context, groupID core.GroupID) (*leaderboard.Board, error)
}

// Groups resolves groups by ID or join code
type Groups interface {
	GetGroup(ctx context.Context, groupID core.GroupID) (*troop.Group, error)
	LookupGroup(ctx context.Context, code string) (*troop.Group, error)
}

var (
	_ Boards = (*app.LeaderboardService)(nil)
	_ Groups = (*app.TroopService)(nil)
)

// App represents the UI application
type App struct {
	router    *chi.Mux
	boards    Boards
	groups    Groups
	templates *template.Template
	logger    *internal.Logger
}

// NewApp creates a new UI application
func NewApp(boards Boards, groups Groups, logger *internal.Logger) (*App, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	funcMap := template.FuncMap{
		"duration": leaderboard.DisplayDuration,
		"streak":   leaderboard.DisplayStreak,
		"count":    leaderboard.DisplayCount,
		"badges":   leaderboard.BadgeIcons,
		"seconds": func(v float64) string {
			return leaderboard.DisplayDuration(int(v))
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		boards:    boards,
		groups:    groups,
		templates: templates,
		logger:    logger.With("ui"),
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

// Handler exposes the router for an http.Server
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/join", a.handleJoinCode)
	a.router.Get("/troops/{groupID}", a.handleLeaderboard)
}

type indexPage struct {
	Code  string
	Error string
}

type leaderboardPage struct {
	Group *troop.Group
	Board *leaderboard.Board
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "index", indexPage{})
}

// handleJoinCode sends a join code to its troop's page
func (a *App) handleJoinCode(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	group, err := a.groups.LookupGroup(r.Context(), code)
	if err != nil {
		if core.IsNotFoundError(err) {
			a.renderTemplate(w, http.StatusNotFound, "index", indexPage{Code: code, Error: "No troop uses that code."})
			return
		}
		a.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/troops/"+group.ID.String(), http.StatusSeeOther)
}

func (a *App) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	groupID := core.GroupID(chi.URLParam(r, "groupID"))
	group, err := a.groups.GetGroup(r.Context(), groupID)
	if err != nil {
		if core.IsNotFoundError(err) {
			http.NotFound(w, r)
			return
		}
		a.serverError(w, err)
		return
	}

	board, err := a.boards.Leaderboard(r.Context(), groupID)
	if err != nil {
		a.serverError(w, err)
		return
	}
	a.renderTemplate(w, http.StatusOK, "leaderboard", leaderboardPage{Group: group, Board: board})
}

// renderTemplate renders to a buffer first so a template error never
// leaves a half-written page
func (a *App) renderTemplate(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		a.serverError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		a.logger.Warn("Writing %s failed: %v", name, err)
	}
}

func (a *App) serverError(w http.ResponseWriter, err error) {
	a.logger.Error("Page failed: %v", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
