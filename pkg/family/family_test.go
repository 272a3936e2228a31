package family

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/errors"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("ID\n"), 0o600))
}

func TestVocabularySplit(t *testing.T) {
	v := DefaultVocabulary()
	tests := []struct {
		stem, base, suffix string
		ok                 bool
	}{
		{"abi_base", "abi_base", "", false},
		{"abi_base_kcc", "abi_base", "kcc", true},
		{"items_vala", "items", "vala", true},
		{"items_val", "items", "val", true},
		{"items_xyz", "items_xyz", "", false},
		{"_kcc", "_kcc", "", false},
		{"kcc", "kcc", "", false},
		{"weapons_ep1", "weapons", "ep1", true},
	}
	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			base, suffix, ok := v.Split(tt.stem)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.suffix, suffix)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestVocabularyLongestMatch(t *testing.T) {
	v := NewVocabulary("b", "a_b", "", "b")
	assert.Equal(t, 2, v.Len())
	base, suffix, ok := v.Split("x_a_b")
	require.True(t, ok)
	assert.Equal(t, "x", base)
	assert.Equal(t, "a_b", suffix)
	assert.Equal(t, []string{"a_b", "b"}, v.Tags())
	assert.True(t, v.Contains("b"))
	assert.False(t, v.Contains("c"))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "abi_base.csv"))
	touch(t, filepath.Join(root, "abi_base_kcc.csv"))
	touch(t, filepath.Join(root, "dlc", "abi_base_drk.csv"))
	touch(t, filepath.Join(root, "items_xyz.csv"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "other", "abi_base.csv"))

	result, err := Scan([]string{root})
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalFiles)
	assert.Equal(t, []string{"abi_base", "items_xyz"}, result.Names())

	fam, ok := result.Find("abi_base")
	require.True(t, ok)
	require.Len(t, fam.Members, 4)
	assert.Equal(t, filepath.Join(root, "abi_base.csv"), fam.Members[0].Path)
	assert.Equal(t, filepath.Join(root, "other", "abi_base.csv"), fam.Members[1].Path)
	assert.Equal(t, "drk", fam.Members[2].Suffix)
	assert.Equal(t, "kcc", fam.Members[3].Suffix)

	base, ok := fam.Base()
	require.True(t, ok)
	assert.True(t, base.IsBase())
	assert.Len(t, fam.Variants(), 2)

	_, ok = result.Find("nope")
	assert.False(t, ok)
}

func TestScanVariantOnlyFamily(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "maps_gxa.csv"))

	result, err := Scan([]string{root})
	require.NoError(t, err)
	fam, ok := result.Find("maps")
	require.True(t, ok)
	_, ok = fam.Base()
	assert.False(t, ok)
	assert.Equal(t, []string{filepath.Join(root, "maps_gxa.csv")}, fam.Paths())
}

func TestScanOptions(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.tsv"))
	touch(t, filepath.Join(root, "a_beta.tsv"))
	touch(t, filepath.Join(root, "a_kcc.tsv"))

	result, err := Scan([]string{root}, WithExtension("tsv"), WithVocabulary(NewVocabulary("beta")))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a_kcc"}, result.Names())
}

func TestScanEmptyDirectory(t *testing.T) {
	result, err := Scan([]string{t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, result.Families)
	assert.Zero(t, result.TotalFiles)
}

func TestScanMissingRoots(t *testing.T) {
	good := t.TempDir()
	touch(t, filepath.Join(good, "a.csv"))
	missingA := filepath.Join(good, "missing-a")
	missingB := filepath.Join(good, "missing-b")

	result, err := Scan([]string{missingA, good, missingB})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing-a")
	assert.Contains(t, err.Error(), "missing-b")
	assert.ErrorIs(t, err, os.ErrNotExist)

	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))
	assert.Equal(t, []string{"a"}, result.Names())
}

func TestScanFollowsSymlinks(t *testing.T) {
	target := t.TempDir()
	touch(t, filepath.Join(target, "linked_kcc.csv"))

	root := t.TempDir()
	if err := os.Symlink(target, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	result, err := Scan([]string{root})
	require.NoError(t, err)
	_, ok := result.Find("linked")
	assert.True(t, ok)
}

func TestSearch(t *testing.T) {
	r := &ScanResult{Families: []Family{{Name: "AbiBase"}, {Name: "items"}, {Name: "abilities"}}}
	names := func(fs []Family) []string {
		var out []string
		for _, f := range fs {
			out = append(out, f.Name)
		}
		return out
	}
	assert.Equal(t, []string{"AbiBase", "abilities"}, names(r.Search("ABI")))
	assert.Empty(t, r.Search("zzz"))
}
