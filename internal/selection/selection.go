// Package selection picks the track to show when the user has not chosen one.
package selection

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/mgpai22/subtrack/internal/track"
)

// NoneLanguage in the preference list means "subtitles off".
const NoneLanguage = "none"

// Preferences drive the default-track heuristic.
type Preferences struct {
	// ordered, most preferred first
	Languages []string
	// label substrings that disqualify a candidate
	Blacklist []string
}

// ParsePreferences splits the comma separated settings values.
func ParsePreferences(languages, blacklist string) Preferences {
	return Preferences{
		Languages: splitList(languages),
		Blacklist: splitList(blacklist),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Default returns the track number to select automatically, or track.None.
// tracks must be sorted by ascending number.
func Default(tracks []track.Track, prefs Preferences) int {
	candidates := filterBlacklist(tracks, prefs.Blacklist)
	if len(candidates) == 0 {
		return track.None
	}

	for _, lang := range prefs.Languages {
		if strings.EqualFold(lang, NoneLanguage) {
			return track.None
		}

		var matches []track.Track
		for _, t := range candidates {
			if languageMatches(lang, t) {
				matches = append(matches, t)
			}
		}
		if len(matches) == 0 {
			continue
		}
		for _, t := range matches {
			if t.Forced {
				return t.Number
			}
		}
		return matches[0].Number
	}

	for _, t := range candidates {
		if t.Default {
			return t.Number
		}
	}
	for _, t := range candidates {
		if t.Forced {
			return t.Number
		}
	}
	return candidates[0].Number
}

// filterBlacklist drops blacklisted labels, but only when there is a choice
// to make, and never down to nothing.
func filterBlacklist(tracks []track.Track, blacklist []string) []track.Track {
	if len(tracks) <= 1 || len(blacklist) == 0 {
		return tracks
	}

	kept := make([]track.Track, 0, len(tracks))
	for _, t := range tracks {
		if !blacklisted(t.Label, blacklist) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return tracks
	}
	return kept
}

func blacklisted(label string, blacklist []string) bool {
	label = strings.ToLower(label)
	for _, entry := range blacklist {
		if strings.Contains(label, strings.ToLower(entry)) {
			return true
		}
	}
	return false
}

func languageMatches(want string, t track.Track) bool {
	for _, have := range []string{t.LanguageTag, t.Language} {
		if have != "" && SameLanguage(want, have) {
			return true
		}
	}
	return false
}

// SameLanguage compares two language codes by base language, so en, eng and
// en-US are all equal. Unparseable codes fall back to a case-insensitive
// string compare.
func SameLanguage(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}

	ta, errA := language.Parse(a)
	tb, errB := language.Parse(b)
	if errA != nil || errB != nil {
		return false
	}

	baseA, confA := ta.Base()
	baseB, confB := tb.Base()
	if confA == language.No || confB == language.No {
		return false
	}
	return baseA == baseB
}
