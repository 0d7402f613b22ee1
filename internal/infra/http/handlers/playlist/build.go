package playlist

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/angristan/music-tonight/internal/app/services/events"
	"github.com/angristan/music-tonight/internal/app/services/playlist"
	"github.com/angristan/music-tonight/internal/domain/fault"
	"github.com/angristan/music-tonight/internal/domain/model"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var ErrInvalidParameter = errors.New("invalid query parameter")

func (h *PlaylistHandler) Build(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "PlaylistHandler.Build")
	defer span.End()

	eventOpts, trackOpts, err := parseRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.playlistService.BuildPlaylist(ctx, eventOpts, trackOpts)
	if err != nil {
		span.RecordError(err)

		status, message := errorResponse(err)
		h.logger.WithError(err).WithFields(logrus.Fields{
			"status":   status,
			"location": eventOpts.Location,
			"service":  trackOpts.Provider,
		}).Warn("Playlist build failed")

		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseRequest(c *gin.Context) (events.Options, playlist.TrackOptions, error) {
	daysOut, err := intQuery(c, "daysout", defaultDaysOut)
	if err != nil {
		return events.Options{}, playlist.TrackOptions{}, err
	}

	maxMiles, err := intQuery(c, "maxmiles", defaultMaxMiles)
	if err != nil {
		return events.Options{}, playlist.TrackOptions{}, err
	}

	maxTracks, err := intQuery(c, "maxartisttracks", defaultMaxTracksPerArtist)
	if err != nil {
		return events.Options{}, playlist.TrackOptions{}, err
	}

	eventOpts := events.Options{
		Location: model.Location{
			LatLon:   c.Query("latlon"),
			ClientIP: clientIP(c),
		},
		DaysOut:       daysOut,
		MaxRadius:     maxMiles,
		OnlyAvailable: c.Query("onlyavailable") == "true",
	}

	trackOpts := playlist.TrackOptions{
		Provider:           model.Provider(c.DefaultQuery("service", string(model.ProviderSpotify))),
		MaxTracksPerArtist: maxTracks,
		Language:           language(c.GetHeader("Accept-Language")),
	}

	return eventOpts, trackOpts, nil
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidParameter, name)
	}

	return n, nil
}

// clientIP is the first X-Forwarded-For hop, or the peer address.
func clientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	return c.RemoteIP()
}

func language(acceptLanguage string) string {
	first := strings.FieldsFunc(acceptLanguage, func(r rune) bool {
		return r == ',' || r == ';'
	})
	if len(first) == 0 || strings.TrimSpace(first[0]) == "" {
		return defaultLanguage
	}

	return strings.TrimSpace(first[0])
}

func errorResponse(err error) (int, string) {
	switch fault.KindOf(err) {
	case fault.KindClientInput:
		var fe *fault.Error
		if errors.As(err, &fe) {
			return http.StatusBadRequest, fe.Err.Error()
		}
		return http.StatusBadRequest, "bad request"
	case fault.KindProvider:
		return http.StatusBadGateway, "upstream provider error"
	case fault.KindProviderTimeout:
		return http.StatusGatewayTimeout, "upstream provider timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
