package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ecobins/internal/auth"
	"ecobins/internal/backend"
	"ecobins/internal/model"
	"ecobins/internal/service/placement"
	"ecobins/internal/service/zone"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type TokenVerifier interface {
	Actor(token string) (model.Actor, error)
}

type SnapshotReader interface {
	Ready() bool
	Zones() []model.Zone
	Containers() []model.Container
	Resolver() *zone.Resolver
	RefreshedAt() (time.Time, bool)
}

type ScopeResolver interface {
	Assigned(ctx context.Context, actor model.Actor) (zone.Scope, error)
}

type Placer interface {
	Resolve(ctx context.Context, actor model.Actor, point model.LatLng) (model.Zone, error)
	Place(ctx context.Context, actor model.Actor, req placement.PlaceRequest) (model.Zone, error)
	Recent(ctx context.Context, userID int64, limit int) ([]model.PlacementPG, error)
}

type PointsReader interface {
	Get(userID int64) (model.PointsTotal, bool)
}

type LeaderboardSource interface {
	Leaderboard(ctx context.Context, token string, limit int) ([]model.LeaderboardEntry, error)
}

// Services are the dependencies of the HTTP handlers
type Services struct {
	Verifier    TokenVerifier
	Snapshots   SnapshotReader
	Scopes      ScopeResolver
	Placements  Placer
	Points      PointsReader
	Leaderboard LeaderboardSource
}

var errNotReady = errors.New("zone data not loaded yet")

// abortWithError maps service errors to HTTP status codes
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var statusErr *backend.StatusError
	var decodeErr *model.DecodeError

	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, placement.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, placement.ErrInvalidPoint):
		status = http.StatusBadRequest
	case errors.Is(err, zone.ErrOutsideAllZones):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errNotReady):
		status = http.StatusServiceUnavailable
	case errors.As(err, &statusErr):
		status = http.StatusBadGateway
		if statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden {
			status = statusErr.Code
		}
	case errors.As(err, &decodeErr):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		log.WithField("request_id", c.GetString(requestIDKey)).Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func requireSnapshot(c *gin.Context, snapshots SnapshotReader) bool {
	if !snapshots.Ready() {
		abortWithError(c, errNotReady)
		return false
	}
	return true
}
