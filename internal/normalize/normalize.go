// Package normalize flattens raw Chess.com API responses into the fixed
// tabular schema every artifact this tool produces shares.
//
// The upstream responses are sparse: a player who has never played blitz
// has no chess_blitz object at all, and within a speed object either
// best or record can be missing on its own. Every lookup therefore fails
// independently and substitutes a default instead of propagating.
package normalize

import (
	"errors"
	"strconv"
	"strings"
)

// Columns is the output schema, in emission order.
var Columns = []string{
	"rapid_rating", "rapid_wins", "rapid_losses", "rapid_draws",
	"blitz_rating", "blitz_wins", "blitz_losses", "blitz_draws",
	"bullet_rating", "bullet_wins", "bullet_losses", "bullet_draws",
	"tactics_rating", "puzzle_rush_rating", "country", "location", "title",
}

const (
	// DefaultStat replaces any missing rating, record count, or score.
	DefaultStat = "0"
	// DefaultLocation replaces a missing free-text location.
	DefaultLocation = "No Location Data Available"
	// DefaultTitle replaces a missing FIDE title.
	DefaultTitle = "None"
)

// ErrNoCountry reports a profile without a country reference. Country is
// the one required field: there is no defined default, so the record
// cannot be built.
var ErrNoCountry = errors.New("profile has no country field")

// Bundle is a decoded JSON object from the API. Any key may be absent
// at any depth or hold an unexpected type; callers must not rely on
// shape beyond what Build tolerates.
type Bundle map[string]any

// Record is one player's flattened row. All fields are strings,
// including the numeric ones — the column types are part of the
// downstream contract.
type Record struct {
	RapidRating  string
	RapidWins    string
	RapidLosses  string
	RapidDraws   string
	BlitzRating  string
	BlitzWins    string
	BlitzLosses  string
	BlitzDraws   string
	BulletRating string
	BulletWins   string
	BulletLosses string
	BulletDraws  string
	// TacticsRating is the highest puzzle rating ever reached.
	TacticsRating string
	// PuzzleRushBest is the best puzzle-rush score across all three
	// modes (3 min, 5 min, survival); the API does not say which mode
	// produced it, so neither can we.
	PuzzleRushBest string
	Country        string
	Location       string
	Title          string
}

// Row returns the record's fields in Columns order.
func (r Record) Row() []string {
	return []string{
		r.RapidRating, r.RapidWins, r.RapidLosses, r.RapidDraws,
		r.BlitzRating, r.BlitzWins, r.BlitzLosses, r.BlitzDraws,
		r.BulletRating, r.BulletWins, r.BulletLosses, r.BulletDraws,
		r.TacticsRating, r.PuzzleRushBest, r.Country, r.Location, r.Title,
	}
}

// Build maps a stats bundle and a profile bundle into a Record. It is a
// pure function: the only failure mode is a profile with no country.
func Build(stats, profile Bundle) (Record, error) {
	country, ok := stringAt(profile, "country")
	if !ok {
		return Record{}, ErrNoCountry
	}

	rec := Record{
		RapidRating:  statAt(stats, "chess_rapid", "best", "rating"),
		RapidWins:    statAt(stats, "chess_rapid", "record", "win"),
		RapidLosses:  statAt(stats, "chess_rapid", "record", "loss"),
		RapidDraws:   statAt(stats, "chess_rapid", "record", "draw"),
		BlitzRating:  statAt(stats, "chess_blitz", "best", "rating"),
		BlitzWins:    statAt(stats, "chess_blitz", "record", "win"),
		BlitzLosses:  statAt(stats, "chess_blitz", "record", "loss"),
		BlitzDraws:   statAt(stats, "chess_blitz", "record", "draw"),
		BulletRating: statAt(stats, "chess_bullet", "best", "rating"),
		BulletWins:   statAt(stats, "chess_bullet", "record", "win"),
		BulletLosses: statAt(stats, "chess_bullet", "record", "loss"),
		BulletDraws:  statAt(stats, "chess_bullet", "record", "draw"),

		TacticsRating:  statAt(stats, "tactics", "highest", "rating"),
		PuzzleRushBest: statAt(stats, "puzzle_rush", "best", "score"),

		Country:  countryCode(country),
		Location: DefaultLocation,
		Title:    DefaultTitle,
	}

	if loc, ok := stringAt(profile, "location"); ok {
		rec.Location = loc
	}
	if title, ok := stringAt(profile, "title"); ok {
		rec.Title = title
	}
	return rec, nil
}

// countryCode strips the /pub/country/<code> URL convention, keeping
// only the trailing code. A bare code passes through unchanged.
func countryCode(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// statAt walks path through b and renders the leaf as a stat string.
// Any missing or mistyped step yields DefaultStat.
func statAt(b Bundle, path ...string) string {
	v, ok := valueAt(b, path...)
	if !ok {
		return DefaultStat
	}
	s, ok := renderStat(v)
	if !ok {
		return DefaultStat
	}
	return s
}

// valueAt descends through nested objects one key at a time.
func valueAt(b Bundle, path ...string) (any, bool) {
	var cur any = map[string]any(b)
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// renderStat turns a decoded JSON leaf into its text form.
//
// encoding/json decodes all numbers as float64; ratings are integral so
// they must render without a fractional part (2400, not 2400.0).
func renderStat(v any) (string, bool) {
	switch v := v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	default:
		return "", false
	}
}

// stringAt returns the string at a top-level key, if present.
func stringAt(b Bundle, key string) (string, bool) {
	v, ok := b[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return s, true
}
