package util

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCBZ(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"page_002.jpg", "page_001.jpg"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(name), 0644))
		files = append(files, p)
	}

	out := filepath.Join(dir, "12.cbz")
	err := CreateCBZ(files, out, &ComicInfo{Series: "테스트", Number: "12", Pages: 2})
	require.NoError(t, err)

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer func() {
		_ = r.Close()
	}()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"page_001.jpg", "page_002.jpg", "ComicInfo.xml"}, names)

	rc, err := r.File[2].Open()
	require.NoError(t, err)
	defer func() {
		_ = rc.Close()
	}()

	meta, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(meta), "<Series>테스트</Series>")
	assert.Contains(t, string(meta), "<Number>12</Number>")
	assert.Contains(t, string(meta), "<PageCount>2</PageCount>")
	assert.NotContains(t, string(meta), "<Writer>")
}

func TestCreateCBZ_MissingFile(t *testing.T) {
	dir := t.TempDir()
	err := CreateCBZ([]string{filepath.Join(dir, "nope.jpg")}, filepath.Join(dir, "x.cbz"), nil)
	assert.Error(t, err)
}

func TestCleanupUnfinishedTempFolders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "12_tmp"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "keep"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file_tmp"), nil, 0644))

	removed := CleanupUnfinishedTempFolders(dir)

	assert.Equal(t, []string{filepath.Join(dir, "12_tmp")}, removed)
	assert.DirExists(t, filepath.Join(dir, "keep"))
	assert.FileExists(t, filepath.Join(dir, "file_tmp"))
}

func TestRemoveIfEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.Mkdir(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), nil, 0644))

	assert.False(t, RemoveIfEmpty(dir))

	require.NoError(t, os.Remove(filepath.Join(dir, "a")))
	assert.True(t, RemoveIfEmpty(dir))
	assert.NoDirExists(t, dir)
}

func TestHuman(t *testing.T) {
	assert.Equal(t, "512 B", Human(512))
	assert.Equal(t, "1.50 KB", Human(1536))
	assert.Equal(t, "2.00 MB", Human(2<<20))
	assert.Equal(t, "3.00 GB", Human(3<<30))
	assert.Equal(t, "2048.00 GB", Human(2<<40))
}
