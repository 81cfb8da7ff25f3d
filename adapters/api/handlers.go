package api

import (
	"fmt"
	"io"
	"net/http"

	"troopstats/adapters/excel"
	"troopstats/adapters/legacy"
	"troopstats/domain/core"
	apperrors "troopstats/internal/errors"

	"github.com/gin-gonic/gin"
)

// maxLegacyLogBytes bounds an uploaded legacy log
const maxLegacyLogBytes = 8 << 20

func (s *Server) handleCreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}

	group, err := s.troops.CreateGroup(c.Request.Context(), req.Name, currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (s *Server) handleJoinGroup(c *gin.Context) {
	var req joinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}

	group, err := s.troops.JoinGroup(c.Request.Context(), req.Code, currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (s *Server) handleListGroups(c *gin.Context) {
	groups, err := s.troops.ListGroups(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": nonNil(groups)})
}

func (s *Server) handleListParticipants(c *gin.Context) {
	groupID, ok := s.groupParam(c)
	if !ok {
		return
	}
	participants, err := s.troops.ListParticipants(c.Request.Context(), groupID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": nonNil(participants)})
}

func (s *Server) handleAddParticipant(c *gin.Context) {
	groupID, ok := s.groupParam(c)
	if !ok {
		return
	}
	var req addParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}

	var owner core.UserID
	if req.Self {
		owner = currentUser(c)
	}
	p, err := s.troops.AddParticipant(c.Request.Context(), groupID, req.Name, owner)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) handleRemoveParticipant(c *gin.Context) {
	groupID, ok := s.groupParam(c)
	if !ok {
		return
	}
	participantID, err := core.ParseParticipantID(c.Param("participantId"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.troops.RemoveParticipant(c.Request.Context(), groupID, participantID); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleLogEntry(c *gin.Context) {
	groupID, ok := s.groupParam(c)
	if !ok {
		return
	}
	var req logEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}

	var date core.Date
	if req.Date != "" {
		parsed, err := core.ParseDate(req.Date)
		if err != nil {
			s.respondError(c, err)
			return
		}
		date = parsed
	}

	entry, err := s.troops.LogEntry(c.Request.Context(), groupID, req.ParticipantID, date, string(req.Hang), string(req.Med))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	groupID, ok := s.groupParam(c)
	if !ok {
		return
	}
	board, err := s.boards.Leaderboard(c.Request.Context(), groupID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (s *Server) handleParticipantStats(c *gin.Context) {
	groupID, ok := s.groupParam(c)
	if !ok {
		return
	}
	participantID, err := core.ParseParticipantID(c.Param("participantId"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	snap, err := s.boards.ParticipantStats(c.Request.Context(), groupID, participantID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleProfile(c *gin.Context) {
	profile, err := s.boards.Profile(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleExport(c *gin.Context) {
	groupID, ok := s.groupParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	board, err := s.boards.Leaderboard(ctx, groupID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	groupLog, err := s.boards.GroupLog(ctx, groupID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "troop-"+groupID.String()+".xlsx"))
	c.Status(http.StatusOK)
	if err := excel.Export(c.Writer, board, groupLog.Participants, groupLog.Entries); err != nil {
		s.logger.Error("Export of group %s failed: %v", groupID, err)
	}
}

// handleMigrate takes the raw legacy log document as the request body
func (s *Server) handleMigrate(c *gin.Context) {
	groupID, ok := s.groupParam(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxLegacyLogBytes+1))
	if err != nil {
		s.respondError(c, apperrors.InvalidInput("failed to read body"))
		return
	}
	if len(body) > maxLegacyLogBytes {
		s.respondError(c, apperrors.InvalidInput("legacy log too large"))
		return
	}

	legacyLog, err := legacy.Parse(body)
	if err != nil {
		s.respondError(c, err)
		return
	}

	result, err := s.troops.MigrateLegacyLog(c.Request.Context(), legacyLog, groupID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMigrationResponse(result))
}

func (s *Server) groupParam(c *gin.Context) (core.GroupID, bool) {
	groupID, err := core.ParseGroupID(c.Param("groupId"))
	if err != nil {
		s.respondError(c, err)
		return "", false
	}
	return groupID, true
}

// respondError writes the error's status and code. Internal failures are
// logged and answered without detail.
func (s *Server) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	code := apperrors.GetCode(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "Internal server error", "code": code})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
