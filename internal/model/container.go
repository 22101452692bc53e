package model

// Status is the derived operational state of a container
type Status string

const (
	StatusLocked   Status = "locked"
	StatusFull     Status = "full"
	StatusNearFull Status = "near_full"
	StatusOk       Status = "ok"
)

// Color returns the marker colour the dashboard uses for the status
func (s Status) Color() string {
	switch s {
	case StatusLocked:
		return "#6b7280"
	case StatusFull:
		return "#ef4444"
	case StatusNearFull:
		return "#f59e0b"
	default:
		return "#10b981"
	}
}

// Actionable reports whether the status requires operator attention
func (s Status) Actionable() bool {
	return s == StatusLocked || s == StatusFull
}

// Container is a recycling receptacle as reported by the backend
type Container struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Position    *LatLng `json:"position,omitempty"` // nil containers are not plotted
	CapacityMax float64 `json:"capacity_max"`
	CurrentLoad float64 `json:"current_load"` // may exceed CapacityMax transiently
	Full        bool    `json:"full"`
	Locked      bool    `json:"locked"`   // out of service, wins over Full
	ZoneID      int64   `json:"zone_id"`  // declared by the backend, may be stale
	ZoneName    string  `json:"zone_name,omitempty"`
}

// ContainerUpdate is a live state change pushed for a single container.
// Nil fields were absent from the message and are left untouched.
type ContainerUpdate struct {
	ID          int64
	CurrentLoad *float64
	Full        *bool
	Locked      *bool
}

// Apply patches c with the fields present in u
func (u ContainerUpdate) Apply(c *Container) {
	if u.CurrentLoad != nil {
		c.CurrentLoad = *u.CurrentLoad
	}
	if u.Full != nil {
		c.Full = *u.Full
	}
	if u.Locked != nil {
		c.Locked = *u.Locked
	}
}

// ContainerCreateRequest is the backend payload for POST /contenedores
type ContainerCreateRequest struct {
	Name        string  `json:"nombre"`
	ZoneID      int64   `json:"zonaId"`
	CapacityMax float64 `json:"capacidad_maxima"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lon"`
}
