package tablemerge

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/family"
	"github.com/agentstation/tablemerge/pkg/history"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/merge"
	"github.com/agentstation/tablemerge/pkg/provenance"
)

// options holds the client configuration.
type options struct {
	roots         []string
	vocabulary    family.Vocabulary
	extension     string
	history       history.Store
	logger        *zerolog.Logger
	tracker       provenance.Tracker
	exportWorkers int
	loader        merge.Loader
}

// Option is a function that configures a Client.
type Option func(*options) error

func defaults() *options {
	return &options{
		vocabulary:    family.DefaultVocabulary(),
		extension:     constants.DefaultExtension,
		logger:        logging.Default(),
		exportWorkers: constants.DefaultExportWorkers,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithRoots sets the directories scanned for families.
func WithRoots(roots ...string) Option {
	return func(o *options) error {
		o.roots = append(o.roots, roots...)
		return nil
	}
}

// WithVocabulary replaces the variant tags.
func WithVocabulary(v family.Vocabulary) Option {
	return func(o *options) error {
		if v.Len() == 0 {
			return errors.NewValidationError("vocabulary", nil, "at least one variant tag is required")
		}
		o.vocabulary = v
		return nil
	}
}

// WithExtension sets the record file extension.
func WithExtension(ext string) Option {
	return func(o *options) error {
		if ext == "" {
			return errors.NewValidationError("extension", ext, "cannot be empty")
		}
		o.extension = ext
		return nil
	}
}

// WithHistory records applied patches in s, enabling Undo.
func WithHistory(s history.Store) Option {
	return func(o *options) error {
		o.history = s
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger != nil {
			o.logger = logger
		}
		return nil
	}
}

// WithProvenance records provenance of every merge in t.
func WithProvenance(t provenance.Tracker) Option {
	return func(o *options) error {
		o.tracker = t
		return nil
	}
}

// WithExportWorkers sets how many files an export rewrites concurrently.
func WithExportWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 || n > constants.MaxExportWorkers {
			return errors.NewValidationError("export workers", n, "out of range")
		}
		o.exportWorkers = n
		return nil
	}
}

// WithLoader replaces the record file parser.
func WithLoader(l merge.Loader) Option {
	return func(o *options) error {
		o.loader = l
		return nil
	}
}
