package leaderboard

import (
	"github.com/montanaflynn/stats"

	domainstats "troopstats/domain/stats"
)

// Summary is the group-wide roll-up shown above the leaderboard.
type Summary struct {
	Participants       int     `json:"participants"`
	ActiveParticipants int     `json:"active_participants"`
	TotalHang          int     `json:"total_hang"`
	TotalMed           int     `json:"total_med"`
	MeanHang           float64 `json:"mean_hang"`
	MedianHang         float64 `json:"median_hang"`
	MeanMed            float64 `json:"mean_med"`
	MedianMed          float64 `json:"median_med"`
}

// Summarize aggregates per-participant totals. An empty group yields a zero Summary.
func Summarize(snaps []domainstats.Snapshot) Summary {
	sum := Summary{Participants: len(snaps)}
	if len(snaps) == 0 {
		return sum
	}

	hang := make(stats.Float64Data, 0, len(snaps))
	med := make(stats.Float64Data, 0, len(snaps))
	for _, s := range snaps {
		sum.TotalHang += s.TotalHang
		sum.TotalMed += s.TotalMed
		if s.ActiveDays > 0 {
			sum.ActiveParticipants++
		}
		hang = append(hang, float64(s.TotalHang))
		med = append(med, float64(s.TotalMed))
	}

	// Errors only occur on empty input, which was ruled out above.
	sum.MeanHang, _ = stats.Round(mustFloat(hang.Mean()), 1)
	sum.MedianHang, _ = stats.Round(mustFloat(hang.Median()), 1)
	sum.MeanMed, _ = stats.Round(mustFloat(med.Mean()), 1)
	sum.MedianMed, _ = stats.Round(mustFloat(med.Median()), 1)
	return sum
}

func mustFloat(v float64, err error) float64 {
	if err != nil {
		return 0
	}
	return v
}
