// Package catalog ranks provider top tracks into artist records and routes
// lookups to the configured providers.
package catalog

import (
	"context"
	"errors"
	"sort"

	"github.com/angristan/music-tonight/internal/domain/model"
)

var (
	ErrUnknownProvider = errors.New("unknown catalog provider")
)

// Client resolves a performer name to its ranked artist record. A nil
// record with a nil error means the provider has no exact match.
type Client interface {
	LookupArtist(ctx context.Context, performer string) (*model.ArtistRecord, error)
}

// Candidate is a provider track before ranking.
type Candidate struct {
	Name       string
	URI        string
	Key        string
	Popularity int
	NumArtists int
}

// Score favours solo tracks: collaborations are penalised by the square of
// the number of credited artists.
func Score(popularity int, numArtists int) float64 {
	if numArtists < 1 {
		numArtists = 1
	}

	return float64(popularity+10) / float64(numArtists*numArtists)
}

// Rank orders candidates by Score, keeps the best NumTracksCached and
// credits them to performer.
func Rank(performer string, candidates []Candidate) []model.Track {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return Score(ranked[i].Popularity, ranked[i].NumArtists) > Score(ranked[j].Popularity, ranked[j].NumArtists)
	})

	if len(ranked) > model.NumTracksCached {
		ranked = ranked[:model.NumTracksCached]
	}

	tracks := make([]model.Track, 0, len(ranked))
	for _, c := range ranked {
		tracks = append(tracks, model.Track{
			Name:       c.Name,
			Artist:     performer,
			URI:        c.URI,
			Key:        c.Key,
			Popularity: c.Popularity,
		})
	}

	return tracks
}
