package backend

import (
	"fmt"
	"sort"

	"fintrack/internal/storage"
	"fintrack/internal/storage/bolt"
	"fintrack/internal/storage/memory"
	"fintrack/internal/storage/mongo"
	"fintrack/internal/storage/postgres"
	"fintrack/internal/storage/sqlite"
)

var drivers = map[string]storage.DialFunc{
	mongo.Scheme:         mongo.Dial,
	mongo.SchemeSRV:      mongo.Dial,
	postgres.Scheme:      postgres.Dial,
	postgres.SchemeAlias: postgres.Dial,
	sqlite.Scheme:        sqlite.Dial,
	bolt.Scheme:          bolt.Dial,
	memory.Scheme:        memory.Dial,
}

// Resolve returns the driver that serves the scheme of uri.
func Resolve(uri string) (storage.DialFunc, error) {
	scheme := storage.Scheme(uri)
	dial, ok := drivers[scheme]
	if !ok {
		return nil, fmt.Errorf("%w %q: must be one of %v", storage.ErrUnsupportedScheme, scheme, Schemes())
	}
	return dial, nil
}

// Schemes lists the supported DATABASE_URL schemes in sorted order.
func Schemes() []string {
	out := make([]string, 0, len(drivers))
	for s := range drivers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
