package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/patch"
)

func writeOutput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewEntryAndVerify(t *testing.T) {
	dir := t.TempDir()
	a := writeOutput(t, dir, "a.csv", "ID\n1\n")
	b := writeOutput(t, dir, "b.csv", "ID\n2\n")

	e, err := NewEntry(patch.New("items").Add(1, "Name", "x"), []string{a, b}, dir)
	require.NoError(t, err)
	assert.Equal(t, "items", e.Family)
	assert.Len(t, e.Digests, 2)
	assert.Len(t, e.Digests[a], 64)
	assert.False(t, e.Timestamp.IsZero())
	assert.Empty(t, e.Verify())

	require.NoError(t, os.WriteFile(a, []byte("ID\n9\n"), 0o600))
	require.NoError(t, os.Remove(b))
	assert.Equal(t, []Change{{Path: a, Reason: "modified"}, {Path: b, Reason: "missing"}}, e.Verify())

	_, err = NewEntry(patch.New("items"), []string{filepath.Join(dir, "nope.csv")}, dir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDigestStable(t *testing.T) {
	dir := t.TempDir()
	a := writeOutput(t, dir, "a.csv", "same")
	b := writeOutput(t, dir, "b.csv", "same")
	da, err := Digest(a)
	require.NoError(t, err)
	db, err := Digest(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func testStore(t *testing.T, open func(path string) (Store, error), path string) {
	t.Helper()
	s, err := open(path)
	require.NoError(t, err)

	_, err = s.Last("items")
	assert.True(t, errors.IsNotFound(err))
	_, err = s.Pop("items")
	assert.True(t, errors.IsNotFound(err))

	for i, fam := range []string{"items", "abi", "items"} {
		p := patch.New(fam).Add(int64(i), "Name", "v")
		require.NoError(t, s.Append(&Entry{Timestamp: utc.Now(), Family: fam, Patch: *p, OutputDir: "out", OutputFiles: []string{"out/" + fam + ".csv"}}))
	}

	total, err := s.Total()
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	families, err := s.Families()
	require.NoError(t, err)
	assert.Equal(t, []string{"abi", "items"}, families)

	list, err := s.List("items")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(0), list[0].Patch.Edits[0].RowID)

	last, err := s.Last("items")
	require.NoError(t, err)
	assert.Equal(t, int64(2), last.Patch.Edits[0].RowID)
	require.NoError(t, s.Close())

	// reopen: everything persisted
	s, err = open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	popped, err := s.Pop("items")
	require.NoError(t, err)
	assert.Equal(t, int64(2), popped.Patch.Edits[0].RowID)

	popped, err = s.Pop("items")
	require.NoError(t, err)
	assert.Equal(t, int64(0), popped.Patch.Edits[0].RowID)

	families, err = s.Families()
	require.NoError(t, err)
	assert.Equal(t, []string{"abi"}, families)

	total, err = s.Total()
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestFileStore(t *testing.T) {
	testStore(t, func(path string) (Store, error) {
		return Open("json", path)
	}, filepath.Join(t.TempDir(), "nested", "history.json"))
}

func TestSQLiteStore(t *testing.T) {
	testStore(t, func(path string) (Store, error) {
		return Open("sqlite", path)
	}, filepath.Join(t.TempDir(), "history.db"))
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := OpenFile(path)
	assert.True(t, errors.IsParseError(err))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("redis", "x")
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestOpenSQLiteOpenFailure(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })

	cause := errors.New("driver unavailable")
	openDB = func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, "sqlite", driver)
		return nil, cause
	}

	path := filepath.Join(t.TempDir(), "history.db")
	_, err := OpenSQLite(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var ioErr *errors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "open", ioErr.Operation)
	assert.Equal(t, path, ioErr.Path)
}
