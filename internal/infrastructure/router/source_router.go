package router

import (
	"path"
	"strings"

	"flight-pipeline-service/internal/domain/entity"
)

// SourceRouter classifies raw object keys into pipeline sources based on
// file naming conventions: the fixed airports reference file, and any
// other CSV whose name does not mention airports carries fact data.
type SourceRouter struct{}

// NewSourceRouter creates a new source router
func NewSourceRouter() *SourceRouter {
	return &SourceRouter{}
}

// Route returns the pipeline source for an object key, or an empty
// string for keys the pipeline does not ingest
func (r *SourceRouter) Route(key string) string {
	name := strings.ToLower(path.Base(key))
	switch {
	case name == "airports.dat":
		return entity.SourceAirports
	case strings.HasSuffix(name, ".csv") && !strings.Contains(name, "airport"):
		return entity.SourceFlights
	default:
		return ""
	}
}

// Classify maps object keys to raw files with their source, dropping
// keys the pipeline does not ingest and preserving input order
func (r *SourceRouter) Classify(keys []string) []entity.RawFile {
	files := make([]entity.RawFile, 0, len(keys))
	for _, key := range keys {
		source := r.Route(key)
		if source == "" {
			continue
		}
		files = append(files, entity.RawFile{
			Key:    key,
			Name:   path.Base(key),
			Source: source,
		})
	}
	return files
}
