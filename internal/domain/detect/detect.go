// Package detect decides whether a freshly fetched snapshot differs from the
// one last persisted.
package detect

import "github.com/okian/rankwatch/internal/domain/model"

// Field names reported by Diff, matching the persisted JSON keys.
const (
	FieldRank            = "rank"
	FieldLeaguePoints    = "league_points"
	FieldWins            = "wins"
	FieldLosses          = "losses"
	FieldTotalGames      = "total_games"
	FieldWinRatePercent  = "win_rate_percent"
	FieldLastGameResult  = "last_game_result"
	FieldSessionPlaytime = "session_playtime"
)

// HasChanged reports whether current should be persisted and announced.
// A nil previous means no usable baseline exists, which always counts as a change.
func HasChanged(previous *model.Snapshot, current model.Snapshot) bool {
	if previous == nil {
		return true
	}
	return *previous != current
}

// Diff lists the fields that differ between previous and current, in a fixed
// order. With no baseline every field is reported.
func Diff(previous *model.Snapshot, current model.Snapshot) []string {
	var prev model.Snapshot
	if previous != nil {
		prev = *previous
	}
	all := previous == nil

	var out []string
	add := func(name string, differs bool) {
		if all || differs {
			out = append(out, name)
		}
	}
	add(FieldRank, prev.Rank != current.Rank)
	add(FieldLeaguePoints, prev.LeaguePoints != current.LeaguePoints)
	add(FieldWins, prev.Wins != current.Wins)
	add(FieldLosses, prev.Losses != current.Losses)
	add(FieldTotalGames, prev.TotalGames != current.TotalGames)
	add(FieldWinRatePercent, prev.WinRatePercent != current.WinRatePercent)
	add(FieldLastGameResult, prev.LastGameResult != current.LastGameResult)
	add(FieldSessionPlaytime, prev.SessionPlaytime != current.SessionPlaytime)
	return out
}
