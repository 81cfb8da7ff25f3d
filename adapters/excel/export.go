package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"troopstats/domain/core"
	"troopstats/domain/leaderboard"
	"troopstats/domain/troop"

	"github.com/xuri/excelize/v2"
)

// Sheet names of an exported workbook
const (
	LeaderboardSheet = "Leaderboard"
	LogSheet         = "Log"
)

var leaderboardHeader = []interface{}{
	"Position", "Name", "Current Streak", "Best Streak", "Total Hang", "Total Meditation", "Active Days", "Badges",
}

var logHeader = []interface{}{"Date", "Participant ID", "Name", "Hang Seconds", "Meditation Seconds"}

// Export writes a two-sheet workbook: the ranked board rendered the way the
// page shows it, and the raw log with one row per entry.
func Export(w io.Writer, board *leaderboard.Board, participants []troop.Participant, entries troop.EntrySet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LeaderboardSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(LogSheet); err != nil {
		return fmt.Errorf("failed to add log sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, LeaderboardSheet, 1, leaderboardHeader); err != nil {
		return err
	}
	for i, row := range board.Rows {
		err := writeRow(f, LeaderboardSheet, i+2, []interface{}{
			row.Position,
			row.Name,
			leaderboard.DisplayStreak(row.CurrentStreak),
			leaderboard.DisplayStreak(row.BestStreak),
			leaderboard.DisplayDuration(row.TotalHang),
			leaderboard.DisplayDuration(row.TotalMed),
			leaderboard.DisplayCount(row.ActiveDays),
			badgeNames(row.Badges),
		})
		if err != nil {
			return err
		}
	}

	names := make(map[core.ParticipantID]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}
	if err := writeRow(f, LogSheet, 1, logHeader); err != nil {
		return err
	}
	for i, e := range entries.Entries(board.GroupID) {
		err := writeRow(f, LogSheet, i+2, []interface{}{
			e.Date.String(), e.ParticipantID.String(), names[e.ParticipantID], e.Hang, e.Med,
		})
		if err != nil {
			return err
		}
	}

	for _, sheet := range []string{LeaderboardSheet, LogSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return fmt.Errorf("failed to style header of %s: %w", sheet, err)
		}
	}
	if err := f.SetColWidth(LeaderboardSheet, "B", "B", 24); err != nil {
		return fmt.Errorf("failed to size name column: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadLog reads the Log sheet of an exported workbook back as a legacy log,
// so a troop's history can be folded into another group.
func ReadLog(r io.Reader) (*troop.LegacyLog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(LogSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", LogSheet, err)
	}

	log := &troop.LegacyLog{}
	seen := make(map[string]bool)
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		localID := strings.TrimSpace(row[1])
		if !seen[localID] {
			seen[localID] = true
			log.Participants = append(log.Participants, troop.LegacyParticipant{LocalID: localID, Name: row[2]})
		}
		date, err := core.ParseDate(strings.TrimSpace(row[0]))
		if err != nil {
			date = core.Date{}
		}
		log.Entries = append(log.Entries, troop.LegacyEntry{
			Date:    date,
			LocalID: localID,
			Hang:    cellInt(row, 3),
			Med:     cellInt(row, 4),
		})
	}
	return log, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func cellInt(row []string, col int) int {
	if col >= len(row) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(row[col]))
	if err != nil {
		return 0
	}
	return n
}

func badgeNames(badges []leaderboard.Badge) string {
	names := make([]string, len(badges))
	for i, b := range badges {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}
