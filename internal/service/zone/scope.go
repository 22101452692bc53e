package zone

import "ecobins/internal/model"

// ZoneSet is a set of zone ids
type ZoneSet map[int64]struct{}

// NewZoneSet builds a set from ids
func NewZoneSet(ids ...int64) ZoneSet {
	set := make(ZoneSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports membership; a nil set has no members
func (s ZoneSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Scope is the part of the zone map an actor works on.
// All means unrestricted, otherwise only IDs; an empty IDs set means nothing.
type Scope struct {
	All bool
	IDs ZoneSet
}

// All returns the unrestricted scope
func All() Scope {
	return Scope{All: true}
}

// Only returns a scope limited to ids
func Only(ids ...int64) Scope {
	return Scope{IDs: NewZoneSet(ids...)}
}

// Contains reports whether zone id is in scope
func (s Scope) Contains(id int64) bool {
	return s.All || s.IDs.Has(id)
}

// Zones filters zones to the scope, keeping order
func (s Scope) Zones(zones []model.Zone) []model.Zone {
	out := make([]model.Zone, 0, len(zones))
	for _, z := range zones {
		if s.Contains(z.ID) {
			out = append(out, z)
		}
	}
	return out
}

// Containers filters containers to the scope, keeping order
func (s Scope) Containers(containers []model.Container) []model.Container {
	if s.All {
		return append(make([]model.Container, 0, len(containers)), containers...)
	}
	return FilterByZones(containers, s.IDs)
}
