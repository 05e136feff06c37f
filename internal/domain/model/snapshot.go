// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// GameResult is the outcome of the most recent ranked game.
type GameResult string

// Known game results. Anything the page shows beyond these maps to Unknown.
const (
	Victory GameResult = "Victory"
	Defeat  GameResult = "Defeat"
	Unknown GameResult = "Unknown"
)

// ParseGameResult maps page text onto a GameResult, case-insensitively.
func ParseGameResult(text string) GameResult {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "victory":
		return Victory
	case "defeat":
		return Defeat
	default:
		return Unknown
	}
}

// Valid reports whether r is one of the three known results.
func (r GameResult) Valid() bool {
	return r == Victory || r == Defeat || r == Unknown
}

// Snapshot is one observation of a player's ranked stats. Build it with
// NewSnapshot and pass it by value; it is never modified after construction.
type Snapshot struct {
	Rank            string     `json:"rank"`
	LeaguePoints    int        `json:"league_points"`
	Wins            int        `json:"wins"`
	Losses          int        `json:"losses"`
	TotalGames      int        `json:"total_games"`
	WinRatePercent  float64    `json:"win_rate_percent"`
	LastGameResult  GameResult `json:"last_game_result"`
	SessionPlaytime string     `json:"session_playtime"`
}

// NewSnapshot derives TotalGames and WinRatePercent and validates the result.
func NewSnapshot(rank string, leaguePoints, wins, losses int, last GameResult, sessionPlaytime string) (Snapshot, error) {
	s := Snapshot{
		Rank:            strings.TrimSpace(rank),
		LeaguePoints:    leaguePoints,
		Wins:            wins,
		Losses:          losses,
		TotalGames:      wins + losses,
		WinRatePercent:  WinRate(wins, wins+losses),
		LastGameResult:  last,
		SessionPlaytime: strings.TrimSpace(sessionPlaytime),
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// WinRate returns 100*wins/total rounded to two decimals, or 0 when total is 0.
// Halves round away from zero (math.Round), so 1 of 800 gives 0.13, not the
// banker's 0.12.
func WinRate(wins, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(wins)*100*100/float64(total)) / 100
}

// Validate checks every snapshot invariant. Stored records are run through it
// on load; a failure there means the record is corrupt.
func (s Snapshot) Validate() error {
	switch {
	case strings.TrimSpace(s.Rank) == "":
		return fmt.Errorf("%w: rank must not be empty", ErrInvalidSnapshot)
	case s.LeaguePoints < 0:
		return fmt.Errorf("%w: league points %d < 0", ErrInvalidSnapshot, s.LeaguePoints)
	case s.Wins < 0:
		return fmt.Errorf("%w: wins %d < 0", ErrInvalidSnapshot, s.Wins)
	case s.Losses < 0:
		return fmt.Errorf("%w: losses %d < 0", ErrInvalidSnapshot, s.Losses)
	case s.TotalGames != s.Wins+s.Losses:
		return fmt.Errorf("%w: total games %d != %d + %d", ErrInvalidSnapshot, s.TotalGames, s.Wins, s.Losses)
	case s.WinRatePercent != WinRate(s.Wins, s.TotalGames):
		return fmt.Errorf("%w: win rate %.2f does not match %d/%d", ErrInvalidSnapshot, s.WinRatePercent, s.Wins, s.TotalGames)
	case !s.LastGameResult.Valid():
		return fmt.Errorf("%w: last game result %q", ErrInvalidSnapshot, s.LastGameResult)
	}
	return nil
}

// String renders the one-line summary used in logs.
func (s Snapshot) String() string {
	return fmt.Sprintf("Rank: %s | LP: %d | Wins: %d | Losses: %d | Total Games: %d | Win Rate: %.2f%% | Last Game: %s",
		s.Rank, s.LeaguePoints, s.Wins, s.Losses, s.TotalGames, s.WinRatePercent, s.LastGameResult)
}

// Record is the persisted unit: one snapshot and when it was observed.
type Record struct {
	Snapshot
	ObservedAt time.Time `json:"observed_at"`
}

// NewRecord stamps s with the observation time in UTC.
func NewRecord(s Snapshot, observedAt time.Time) Record {
	return Record{Snapshot: s, ObservedAt: observedAt.UTC()}
}
