// Command zone-extract reads an OSM PBF extract and writes candidate zone polygons
// for seeding the backend.
package main

import (
	"flag"
	"io"
	"os"

	"ecobins/internal/logging"
	"ecobins/internal/service/zone"

	log "github.com/sirupsen/logrus"
)

func main() {
	input := flag.String("input", "", "path to the .osm.pbf file")
	output := flag.String("output", "", "output file, stdout when empty")
	tag := flag.String("tag", "boundary=administrative", "way filter as key=value, or key for any value")
	format := flag.String("format", "backend", "output format: backend or geojson")
	flag.Parse()

	if err := logging.Setup(logging.Options{Level: "info"}); err != nil {
		log.Fatal(err)
	}

	if *input == "" {
		log.Fatal("-input is required")
	}
	filter, err := ParseTagFilter(*tag)
	if err != nil {
		log.Fatal(err)
	}

	zones, err := NewZoneExtractor(filter).ProcessOSMFile(*input)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}
	for _, d := range zone.ValidateZones(zones) {
		log.Warn(d.Error())
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output: %v", err)
		}
		defer f.Close()
		w = f
	}

	switch *format {
	case "geojson":
		err = WriteGeoJSON(w, zones)
	case "backend":
		err = WriteBackendJSON(w, zones)
	default:
		log.Fatalf("Unknown format %q", *format)
	}
	if err != nil {
		log.Fatalf("Failed to write zones: %v", err)
	}
	log.Infof("Wrote %d zones", len(zones))
}
