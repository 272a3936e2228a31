package family

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
)

// Option configures a scan.
type Option func(*scanner)

type scanner struct {
	vocabulary Vocabulary
	extension  string
	logger     *zerolog.Logger
}

// WithVocabulary replaces the default variant tags.
func WithVocabulary(v Vocabulary) Option {
	return func(s *scanner) {
		s.vocabulary = v
	}
}

// WithExtension sets the data file extension, including the dot.
func WithExtension(ext string) Option {
	return func(s *scanner) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if ext != "" {
			s.extension = ext
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *scanner) {
		s.logger = logging.OrDefault(logger)
	}
}

// Scan walks every root recursively, following symlinks, and groups data
// files into families. Every root that cannot be read contributes an
// error; the joined error is returned together with whatever was found.
func Scan(roots []string, opts ...Option) (*ScanResult, error) {
	s := &scanner{
		vocabulary: DefaultVocabulary(),
		extension:  constants.DefaultExtension,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	groups := make(map[string][]Member)
	total := 0
	var errs []error

	for _, root := range roots {
		n, err := s.walk(root, groups)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	result := &ScanResult{
		Families:   make([]Family, 0, len(groups)),
		TotalFiles: total,
		Roots:      append([]string(nil), roots...),
	}
	for name, members := range groups {
		sortMembers(members)
		result.Families = append(result.Families, Family{Name: name, Members: members})
	}
	sort.Slice(result.Families, func(i, j int) bool {
		return result.Families[i].Name < result.Families[j].Name
	})

	s.logger.Debug().
		Strs("roots", roots).
		Int("files", total).
		Int("families", len(result.Families)).
		Msg("Scan complete")

	return result, errors.Join(errs...)
}

func (s *scanner) walk(root string, groups map[string][]Member) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return 0, errors.WrapIO("walk", root, err)
	}
	if !info.IsDir() {
		return 0, &errors.IOError{Operation: "walk", Path: root, Message: "not a directory"}
	}

	count := 0
	var walkErr error
	err = godirwalk.Walk(root, &godirwalk.Options{
		FollowSymbolicLinks: true,
		Unsorted:            true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			if isDir, err := de.IsDirOrSymlinkToDir(); err == nil && isDir {
				return nil
			}
			name := filepath.Base(path)
			stem, ok := strings.CutSuffix(name, s.extension)
			if !ok || stem == "" {
				return nil
			}

			base, suffix, _ := s.vocabulary.Split(stem)
			groups[base] = append(groups[base], Member{Path: path, Suffix: suffix})
			count++
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			walkErr = errors.WrapIO("walk", path, err)
			return godirwalk.Halt
		},
	})
	if walkErr != nil {
		return count, walkErr
	}
	if err != nil {
		return count, errors.WrapIO("walk", root, err)
	}
	return count, nil
}
