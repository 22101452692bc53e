package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"

	"ecobins/internal/model"

	"github.com/qedus/osmpbf"
	log "github.com/sirupsen/logrus"
)

// TagFilter selects ways by tag. Value "*" matches any value except "no".
type TagFilter struct {
	Key   string
	Value string
}

// ParseTagFilter parses key=value or a bare key
func ParseTagFilter(s string) (TagFilter, error) {
	key, value, found := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return TagFilter{}, fmt.Errorf("empty tag key in %q", s)
	}
	if !found || strings.TrimSpace(value) == "" {
		value = "*"
	}
	return TagFilter{Key: key, Value: strings.TrimSpace(value)}, nil
}

func (f TagFilter) Match(tags map[string]string) bool {
	v, ok := tags[f.Key]
	if !ok {
		return false
	}
	if f.Value == "*" {
		return v != "no"
	}
	return v == f.Value
}

type wayRecord struct {
	ID      int64
	Name    string
	NodeIDs []int64
}

// ZoneExtractor turns closed OSM ways into zone boundaries
type ZoneExtractor struct {
	filter TagFilter
	ways   []wayRecord
	nodes  map[int64]model.LatLng
}

func NewZoneExtractor(filter TagFilter) *ZoneExtractor {
	return &ZoneExtractor{
		filter: filter,
		nodes:  make(map[int64]model.LatLng),
	}
}

// ProcessOSMFile runs two passes: matching ways first, then only the nodes they reference
func (p *ZoneExtractor) ProcessOSMFile(osmFilePath string) ([]model.Zone, error) {
	log.Infof("Processing OSM file: %s", osmFilePath)

	file, err := os.Open(osmFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open OSM file: %w", err)
	}
	defer file.Close()

	log.Info("First pass: collecting ways...")
	needed, err := p.collectWays(newDecoder(file))
	if err != nil {
		return nil, err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind OSM file: %w", err)
	}

	log.Info("Second pass: collecting referenced nodes...")
	if err := p.collectNodes(newDecoder(file), needed); err != nil {
		return nil, err
	}

	zones := p.Zones()
	log.Infof("Processing complete. Extracted %d zones from %d matching ways.", len(zones), len(p.ways))
	return zones, nil
}

func newDecoder(r io.Reader) *osmpbf.Decoder {
	decoder := osmpbf.NewDecoder(r)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)
	// Use all available CPU cores
	decoder.Start(runtime.GOMAXPROCS(-1))
	return decoder
}

func (p *ZoneExtractor) collectWays(decoder *osmpbf.Decoder) (map[int64]struct{}, error) {
	needed := make(map[int64]struct{})

	for {
		obj, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error decoding OSM data: %w", err)
		}

		way, ok := obj.(*osmpbf.Way)
		if !ok || !p.filter.Match(way.Tags) {
			continue
		}
		p.addWay(way.ID, way.Tags["name"], way.NodeIDs)
		for _, id := range way.NodeIDs {
			needed[id] = struct{}{}
		}
	}

	log.Infof("Collected %d matching ways referencing %d nodes", len(p.ways), len(needed))
	return needed, nil
}

func (p *ZoneExtractor) collectNodes(decoder *osmpbf.Decoder, needed map[int64]struct{}) error {
	for {
		obj, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("error decoding OSM data: %w", err)
		}

		if node, ok := obj.(*osmpbf.Node); ok {
			if _, want := needed[node.ID]; want {
				p.nodes[node.ID] = model.LatLng{Lat: node.Lat, Lng: node.Lon}
			}
		}
	}

	log.Infof("Collected %d nodes", len(p.nodes))
	return nil
}

func (p *ZoneExtractor) addWay(id int64, name string, nodeIDs []int64) {
	p.ways = append(p.ways, wayRecord{ID: id, Name: name, NodeIDs: append([]int64(nil), nodeIDs...)})
}

// Zones builds a zone per usable way, ordered by way id
func (p *ZoneExtractor) Zones() []model.Zone {
	zones := make([]model.Zone, 0, len(p.ways))
	skipped := 0
	for _, w := range p.ways {
		z, ok := buildZone(w, p.nodes)
		if !ok {
			skipped++
			continue
		}
		zones = append(zones, z)
	}
	if skipped > 0 {
		log.Warnf("Skipped %d ways that are open, incomplete or have fewer than 3 vertices", skipped)
	}

	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	return zones
}

// buildZone keeps closed ways whose nodes are all known, with the closing vertex dropped
func buildZone(w wayRecord, nodes map[int64]model.LatLng) (model.Zone, bool) {
	n := len(w.NodeIDs)
	if n < 4 || w.NodeIDs[0] != w.NodeIDs[n-1] {
		return model.Zone{}, false
	}

	boundary := make([]model.LatLng, 0, n-1)
	for _, id := range w.NodeIDs[:n-1] {
		p, ok := nodes[id]
		if !ok {
			return model.Zone{}, false
		}
		if len(boundary) > 0 && boundary[len(boundary)-1] == p {
			continue
		}
		boundary = append(boundary, p)
	}
	if len(boundary) < 3 {
		return model.Zone{}, false
	}

	name := w.Name
	if name == "" {
		name = fmt.Sprintf("way/%d", w.ID)
	}
	return model.Zone{ID: w.ID, Name: name, Boundary: boundary}, true
}
