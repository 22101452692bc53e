package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DecodeError reports a backend payload that does not match the expected record shape
type DecodeError struct {
	Entity string // "zone", "container", ...
	Index  int    // position in the envelope, -1 for the envelope itself
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("decode %s: %v", e.Entity, e.Err)
	}
	if e.Field == "" {
		return fmt.Sprintf("decode %s[%d]: %v", e.Entity, e.Index, e.Err)
	}
	return fmt.Sprintf("decode %s[%d].%s: %v", e.Entity, e.Index, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// flexBool accepts JSON booleans as well as the 0/1 integers MySQL hands back
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch s := strings.TrimSpace(string(data)); s {
	case "true", "1", `"1"`, `"true"`:
		*b = true
	case "false", "0", `"0"`, `"false"`, "null":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %s", s)
	}
	return nil
}

type zoneWire struct {
	ID     int64           `json:"id"`
	Nombre string          `json:"nombre"`
	Geom   json.RawMessage `json:"geom"`
}

type zonesEnvelope struct {
	Zonas []zoneWire `json:"zonas"`
}

// DecodeZones decodes a `{"zonas": [...]}` payload.
// A boundary with fewer than 3 vertices is not a decoding error, the resolver reports it.
func DecodeZones(data []byte) ([]Zone, error) {
	var env zonesEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Entity: "zones", Index: -1, Err: err}
	}

	zones := make([]Zone, 0, len(env.Zonas))
	for i, w := range env.Zonas {
		boundary, err := decodeGeom(w.Geom)
		if err != nil {
			return nil, &DecodeError{Entity: "zone", Index: i, Field: "geom", Err: err}
		}
		zones = append(zones, Zone{ID: w.ID, Name: w.Nombre, Boundary: boundary})
	}
	return zones, nil
}

// decodeGeom parses [[lat, lon], ...]. The array may arrive JSON-encoded inside a string.
func decodeGeom(raw json.RawMessage) ([]LatLng, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, err
		}
		return decodeGeom(json.RawMessage(inner))
	}

	var pairs [][]float64
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, err
	}

	boundary := make([]LatLng, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("vertex %d has %d coordinates, want [lat, lon]", i, len(pair))
		}
		p := LatLng{Lat: pair[0], Lng: pair[1]}
		if !p.Valid() {
			return nil, fmt.Errorf("vertex %d out of range: %v", i, pair)
		}
		boundary = append(boundary, p)
	}
	return boundary, nil
}

type containerZoneWire struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

type containerWire struct {
	ID              int64              `json:"id"`
	Nombre          string             `json:"nombre"`
	CapacidadMaxima *float64           `json:"capacidad_maxima"`
	CargaActual     *float64           `json:"carga_actual"`
	Lleno           flexBool           `json:"lleno"`
	Bloqueo         flexBool           `json:"bloqueo"`
	Lat             *float64           `json:"lat"`
	Lon             *float64           `json:"lon"`
	Zona            *containerZoneWire `json:"zona"`
}

type containersEnvelope struct {
	Contenedores []containerWire `json:"contenedores"`
}

// DecodeContainers decodes a `{"contenedores": [...]}` payload
func DecodeContainers(data []byte) ([]Container, error) {
	var env containersEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Entity: "containers", Index: -1, Err: err}
	}

	containers := make([]Container, 0, len(env.Contenedores))
	for i, w := range env.Contenedores {
		c := Container{
			ID:     w.ID,
			Name:   w.Nombre,
			Full:   bool(w.Lleno),
			Locked: bool(w.Bloqueo),
		}
		if w.CapacidadMaxima != nil {
			c.CapacityMax = *w.CapacidadMaxima
		}
		if w.CargaActual != nil {
			if *w.CargaActual < 0 {
				return nil, &DecodeError{Entity: "container", Index: i, Field: "carga_actual",
					Err: fmt.Errorf("negative load %v", *w.CargaActual)}
			}
			c.CurrentLoad = *w.CargaActual
		}
		if w.Lat != nil && w.Lon != nil {
			p := LatLng{Lat: *w.Lat, Lng: *w.Lon}
			if !p.Valid() {
				return nil, &DecodeError{Entity: "container", Index: i, Field: "lat",
					Err: fmt.Errorf("position out of range: %v, %v", *w.Lat, *w.Lon)}
			}
			c.Position = &p
		}
		if w.Zona != nil {
			c.ZoneID = w.Zona.ID
			c.ZoneName = w.Zona.Nombre
		}
		containers = append(containers, c)
	}
	return containers, nil
}

type leaderboardWire struct {
	Usuarios []struct {
		ID     int64  `json:"id"`
		Nombre string `json:"nombre"`
		Puntos int    `json:"puntos"`
	} `json:"usuarios"`
}

// DecodeLeaderboard decodes a `{"usuarios": [...]}` payload, already sorted by the backend
func DecodeLeaderboard(data []byte) ([]LeaderboardEntry, error) {
	var env leaderboardWire
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Entity: "leaderboard", Index: -1, Err: err}
	}

	entries := make([]LeaderboardEntry, len(env.Usuarios))
	for i, u := range env.Usuarios {
		entries[i] = LeaderboardEntry{Rank: i + 1, UserID: u.ID, Name: u.Nombre, Points: u.Puntos}
	}
	return entries, nil
}

type pointsWire struct {
	PuntosGanados *int     `json:"puntosGanados"`
	Puntos        *int     `json:"puntos"`
	Kg            *float64 `json:"kg"`
}

// DecodePointsEvent decodes the payload published on ui/usuarios/<id>/puntos
func DecodePointsEvent(userID int64, data []byte) (PointsEvent, error) {
	var w pointsWire
	if err := json.Unmarshal(data, &w); err != nil {
		return PointsEvent{}, &DecodeError{Entity: "points", Index: -1, Err: err}
	}

	ev := PointsEvent{UserID: userID}
	switch {
	case w.PuntosGanados != nil:
		ev.Points = *w.PuntosGanados
	case w.Puntos != nil:
		ev.Points = *w.Puntos
	default:
		return PointsEvent{}, &DecodeError{Entity: "points", Index: -1, Err: errors.New("missing puntosGanados")}
	}
	if w.Kg != nil {
		ev.Kg = *w.Kg
	}
	return ev, nil
}

type containerUpdateWire struct {
	CargaActual *float64  `json:"carga_actual"`
	Lleno       *flexBool `json:"lleno"`
	Bloqueo     *flexBool `json:"bloqueo"`
}

// DecodeContainerUpdate decodes the payload published on ui/contenedores/<id>
func DecodeContainerUpdate(id int64, data []byte) (ContainerUpdate, error) {
	var w containerUpdateWire
	if err := json.Unmarshal(data, &w); err != nil {
		return ContainerUpdate{}, &DecodeError{Entity: "container_update", Index: -1, Err: err}
	}

	u := ContainerUpdate{ID: id, CurrentLoad: w.CargaActual}
	if w.Lleno != nil {
		full := bool(*w.Lleno)
		u.Full = &full
	}
	if w.Bloqueo != nil {
		locked := bool(*w.Bloqueo)
		u.Locked = &locked
	}
	return u, nil
}

// ParseID parses a positive numeric record id
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
