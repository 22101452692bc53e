package main

import (
	"encoding/json"
	"io"

	"ecobins/internal/model"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// WriteGeoJSON writes the zones as polygon features, coordinates in lon/lat order
func WriteGeoJSON(w io.Writer, zones []model.Zone) error {
	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		f := geojson.NewFeature(orb.Polygon{z.ClosedRing()})
		f.ID = z.ID
		f.Properties["name"] = z.Name
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

type backendZone struct {
	ID     int64        `json:"id"`
	Nombre string       `json:"nombre"`
	Geom   [][2]float64 `json:"geom"`
}

// WriteBackendJSON writes the zones in the backend's {"zonas": [...]} shape with [lat, lon] vertices
func WriteBackendJSON(w io.Writer, zones []model.Zone) error {
	out := struct {
		Zonas []backendZone `json:"zonas"`
	}{Zonas: make([]backendZone, len(zones))}

	for i, z := range zones {
		geom := make([][2]float64, len(z.Boundary))
		for j, p := range z.Boundary {
			geom[j] = [2]float64{p.Lat, p.Lng}
		}
		out.Zonas[i] = backendZone{ID: z.ID, Nombre: z.Name, Geom: geom}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
