package playlist

import (
	"math"
	"strings"

	"github.com/angristan/music-tonight/internal/domain/model"
)

const maxTitleWords = 6

func CacheKey(provider model.Provider, performer string) string {
	return string(provider) + ":" + performer
}

// TracksPerArtist spreads TargetTracks over the performers, at least one
// each and at most maxPerArtist.
func TracksPerArtist(performers int, maxPerArtist int) int {
	if performers < 1 {
		return maxPerArtist
	}

	n := int(math.Round(float64(TargetTracks) / float64(performers)))

	return max(1, min(maxPerArtist, n))
}

// TruncateName shortens titles longer than six words.
func TruncateName(name string) string {
	words := strings.Split(name, " ")
	if len(words) <= maxTitleWords {
		return name
	}

	return strings.Join(words[:maxTitleWords], " ") + "..."
}

// SelectTracks returns copies of the first limit tracks of record, with
// display names and the event attached. record is left untouched.
func SelectTracks(record *model.ArtistRecord, event model.Event, limit int) []model.Track {
	n := min(limit, len(record.Tracks))

	tracks := make([]model.Track, 0, n)
	for _, t := range record.Tracks[:n] {
		ev := event
		t.Name = TruncateName(t.Name)
		t.Event = &ev
		tracks = append(tracks, t)
	}

	return tracks
}
