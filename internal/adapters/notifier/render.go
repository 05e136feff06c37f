package notifier

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/rankwatch/internal/domain/model"
	"github.com/okian/rankwatch/internal/domain/playtime"
)

// Result markers shown next to the last game.
const (
	MarkerVictory = ":white_check_mark:"
	MarkerDefeat  = ":x:"
	MarkerUnknown = ":question:"
)

// Payload is the webhook body.
type Payload struct {
	Content     *string `json:"content"`
	Embeds      []Embed `json:"embeds"`
	Attachments []any   `json:"attachments"`
}

// Embed is a single rich message block.
type Embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Color       *int   `json:"color"`
}

// Marker returns the emoji code for a game result.
func Marker(r model.GameResult) string {
	switch r {
	case model.Victory:
		return MarkerVictory
	case model.Defeat:
		return MarkerDefeat
	default:
		return MarkerUnknown
	}
}

// ProfileURL fills {player} in template with the path-escaped player.
func ProfileURL(template, player string) string {
	return strings.ReplaceAll(template, "{player}", url.PathEscape(player))
}

// Describe renders the message body for s. With equivalents set and a
// parseable playtime, the equivalence lines are appended.
func Describe(s model.Snapshot, equivalents bool) string {
	var b strings.Builder
	b.WriteString("**__Current Season Stats__**\n\n")
	fmt.Fprintf(&b, "Current Rank: **%s**\n", s.Rank)
	fmt.Fprintf(&b, "Current League Points: **%d**\n\n", s.LeaguePoints)
	fmt.Fprintf(&b, "Total Games Played: **%d**\n", s.TotalGames)
	fmt.Fprintf(&b, "W - L : **%d 🥇** - **%d 😢**\n", s.Wins, s.Losses)
	fmt.Fprintf(&b, "Win Rate: **%.2f%%**\n\n", s.WinRatePercent)
	fmt.Fprintf(&b, "Last Game: **%s** %s\n", s.LastGameResult, Marker(s.LastGameResult))
	fmt.Fprintf(&b, "Session Playtime: **%s**", orDash(s.SessionPlaytime))

	if equivalents {
		if d, err := playtime.Parse(s.SessionPlaytime); err == nil {
			b.WriteString("\n\n")
			b.WriteString(strings.Join(playtime.Equivalents(d).Lines(), "\n"))
		}
	}
	return b.String()
}

// Render builds the full payload for s.
func Render(s model.Snapshot, title, link string, equivalents bool) Payload {
	return Payload{
		Embeds: []Embed{{
			Title:       title,
			Description: Describe(s, equivalents),
			URL:         link,
		}},
		Attachments: []any{},
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
