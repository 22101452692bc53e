package zone

import (
	"sort"

	"ecobins/internal/model"
	"ecobins/internal/util"
)

// NearFullRatio is the load share at which a container is flagged as nearly full
const NearFullRatio = 0.75

// ClassifyStatus derives the container status. Locked wins over Full, both win over the load ratio.
// A non-positive capacity never triggers NearFull.
func ClassifyStatus(c model.Container) model.Status {
	switch {
	case c.Locked:
		return model.StatusLocked
	case c.Full:
		return model.StatusFull
	case c.CapacityMax > 0 && c.CurrentLoad >= NearFullRatio*c.CapacityMax:
		return model.StatusNearFull
	default:
		return model.StatusOk
	}
}

// FilterByZones keeps the containers whose declared zone is in zoneIDs, in input order
func FilterByZones(containers []model.Container, zoneIDs ZoneSet) []model.Container {
	out := make([]model.Container, 0)
	if len(zoneIDs) == 0 {
		return out
	}
	for _, c := range containers {
		if zoneIDs.Has(c.ZoneID) {
			out = append(out, c)
		}
	}
	return out
}

// FilterActionable keeps the Full and Locked containers, in input order
func FilterActionable(containers []model.Container) []model.Container {
	out := make([]model.Container, 0)
	for _, c := range containers {
		if ClassifyStatus(c).Actionable() {
			out = append(out, c)
		}
	}
	return out
}

// SortByDistance returns a copy ordered by distance from origin.
// The sort is stable and containers without a position go last.
func SortByDistance(containers []model.Container, origin model.LatLng) []model.Container {
	out := append(make([]model.Container, 0, len(containers)), containers...)

	dist := make(map[int]float64, len(out))
	idx := make([]int, len(out))
	for i, c := range out {
		idx[i] = i
		if c.Position != nil {
			dist[i] = util.DistanceBetween(origin, *c.Position)
		}
	}

	sort.SliceStable(idx, func(a, b int) bool {
		da, okA := dist[idx[a]]
		db, okB := dist[idx[b]]
		if okA != okB {
			return okA
		}
		return da < db
	})

	sorted := make([]model.Container, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

// Summary counts the containers declared in a zone
type Summary struct {
	Total  int `json:"total"`
	Full   int `json:"full"`
	Locked int `json:"locked"`
}

// Summarize counts containers per declared zone
func Summarize(containers []model.Container) map[int64]Summary {
	summaries := make(map[int64]Summary)
	for _, c := range containers {
		s := summaries[c.ZoneID]
		s.Total++
		if c.Full {
			s.Full++
		}
		if c.Locked {
			s.Locked++
		}
		summaries[c.ZoneID] = s
	}
	return summaries
}
