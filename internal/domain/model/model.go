// Package model holds the types shared by the event search, the catalog
// clients and the playlist builder.
package model

import "time"

// NumTracksCached is the number of ranked tracks kept per artist record.
const NumTracksCached = 7

// Provider names a music catalog service. It is also the prefix of the
// artist cache keys.
type Provider string

const (
	ProviderSpotify Provider = "spotify"
	ProviderDeezer  Provider = "deezer"
)

func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case ProviderSpotify:
		return ProviderSpotify, true
	case ProviderDeezer:
		return ProviderDeezer, true
	}

	return "", false
}

type Performer struct {
	Name string `json:"name"`
}

type Venue struct {
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

type Event struct {
	ID           string      `json:"id"`
	Performers   []Performer `json:"performers"`
	Datetime     time.Time   `json:"datetime"`
	DateString   string      `json:"datestring"`
	TicketStatus string      `json:"ticket_status,omitempty"`
	TicketURL    string      `json:"ticket_url,omitempty"`
	Venue        Venue       `json:"venue"`
}

// PerformerMap maps a performer name to the event they play at. Names are
// compared exactly, so two different artists sharing a name collapse into
// one entry.
type PerformerMap map[string]Event

type Track struct {
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	URI        string `json:"uri,omitempty"`
	Key        string `json:"key"`
	Popularity int    `json:"popularity"`
	Event      *Event `json:"event,omitempty"`
}

// ArtistRecord is the cached result of a catalog lookup. Tracks are already
// ranked when the record is written.
type ArtistRecord struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks"`
}

type Playlist struct {
	Name     string  `json:"name"`
	Tracks   []Track `json:"tracks"`
	Language string  `json:"language,omitempty"`
}

// PlaylistName returns the date stamped name used for a playlist built at t.
func PlaylistName(t time.Time) string {
	return t.UTC().Format("2006-01-02") + "-music-tonight"
}

// EventQuery is one request to the events provider.
type EventQuery struct {
	Location string
	Start    time.Time
	End      time.Time
	Radius   int
	PerPage  int
}
