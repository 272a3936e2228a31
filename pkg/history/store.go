package history

import (
	"fmt"
	"strings"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// Store persists history entries keyed by family.
type Store interface {
	// Append adds an entry to its family's history
	Append(e *Entry) error

	// Last returns the most recent entry of a family
	Last(family string) (*Entry, error)

	// Pop removes and returns the most recent entry of a family
	Pop(family string) (*Entry, error)

	// List returns a family's entries, oldest first
	List(family string) ([]*Entry, error)

	// Families returns the families with history, sorted
	Families() ([]string, error)

	// Total returns the number of entries across all families
	Total() (int, error)

	// Close releases the store
	Close() error
}

// Open opens a store of the named backend ("json" or "sqlite") at path.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "", constants.HistoryBackendJSON:
		return OpenFile(path)
	case constants.HistoryBackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, errors.NewConfigError("history", fmt.Sprintf("unknown backend %q", backend), errors.ErrInvalidInput)
	}
}

func noHistory(family string) error {
	return errors.NewNotFoundError("history for family", family)
}
