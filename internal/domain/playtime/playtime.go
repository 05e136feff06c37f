// Package playtime turns the session playtime text shown on the behavior page
// into hours and a few everyday equivalences.
package playtime

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Equivalence rates used by Equivalents.
const (
	WalkingMilesPerHour = 3.0
	HoursPerBook        = 6.0
	HoursPerMovie       = 2.0
)

// ErrUnparseable is returned when the text carries no recognizable duration.
var ErrUnparseable = errors.New("unparseable playtime")

var (
	bareNumber = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	unitToken  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(hours|hour|hrs|hr|h|minutes|minute|mins|min|m)`)
)

// Parse reads text such as "3", "2.5", "4h 30m" or "45 min" into a duration.
// A bare number counts as hours.
func Parse(text string) (time.Duration, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnparseable)
	}
	if bareNumber.MatchString(t) {
		h, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUnparseable, text)
		}
		return hours(h), nil
	}

	matches := unitToken.FindAllStringSubmatch(t, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, text)
	}
	var total time.Duration
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUnparseable, text)
		}
		switch strings.ToLower(m[2])[0] {
		case 'h':
			total += hours(v)
		default:
			total += time.Duration(v * float64(time.Minute))
		}
	}
	return total, nil
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// Equivalence is how much of something else the same time would buy.
type Equivalence struct {
	Hours         float64
	MilesWalked   float64
	BooksRead     float64
	MoviesWatched float64
}

// Equivalents derives the equivalences for d, each rounded to one decimal.
func Equivalents(d time.Duration) Equivalence {
	h := d.Hours()
	return Equivalence{
		Hours:         round1(h),
		MilesWalked:   round1(h * WalkingMilesPerHour),
		BooksRead:     round1(h / HoursPerBook),
		MoviesWatched: round1(h / HoursPerMovie),
	}
}

// Lines renders e as the lines appended to a notification.
func (e Equivalence) Lines() []string {
	return []string{
		fmt.Sprintf("Hours Played: **%.1f**", e.Hours),
		fmt.Sprintf("That's **%.1f** miles walked :walking:", e.MilesWalked),
		fmt.Sprintf("or **%.1f** books read :books:", e.BooksRead),
		fmt.Sprintf("or **%.1f** movies watched :movie_camera:", e.MoviesWatched),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
