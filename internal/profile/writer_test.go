package profile

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/scanpattern/internal/fsutil"
)

func TestWriteAndLoad(t *testing.T) {
	t.Parallel()

	rec, err := Build(smallPattern(t), Cube1Constants())
	require.NoError(t, err)

	mfs := fsutil.NewMemoryFileSystem()
	path, err := Write(mfs, "/profiles", rec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/profiles", "BF1_250_20_10_10_3_2.json"), path)
	assert.True(t, mfs.Exists("/profiles"))

	data, err := mfs.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "{\n    \"name\": \"BF1_250_20_10_10_3_2\",\n    \"class\": \"sensor\",\n    \"type\": \"lidar\","), text[:120])
	assert.Contains(t, text, "\"fireTimeNs\": [")
	assert.NotContains(t, text, "e+0", "fire times must be emitted as integers")

	loaded, err := Load(mfs, path)
	require.NoError(t, err)
	if diff := cmp.Diff(rec, loaded); diff != "" {
		t.Errorf("record changed across Write/Load (-want +got):\n%s", diff)
	}
}

func TestWrite_OSFileSystem(t *testing.T) {
	t.Parallel()

	rec, err := Build(smallPattern(t), Cube1Constants())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	path, err := Write(fsutil.OSFileSystem{}, dir, rec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, rec.Name+".json"), path)

	loaded, err := Load(fsutil.OSFileSystem{}, path)
	require.NoError(t, err)
	assert.Equal(t, rec.Profile.EmitterStates, loaded.Profile.EmitterStates)
}

func TestWrite_Errors(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	_, err := Write(mfs, "/out", nil)
	assert.Error(t, err)
	_, err = Write(mfs, "/out", &Record{})
	assert.Error(t, err)

	boom := errors.New("read-only filesystem")
	mfs.FailCreate = boom
	rec, err := Build(smallPattern(t), Cube1Constants())
	require.NoError(t, err)
	path, err := Write(mfs, "/out", rec)
	assert.True(t, errors.Is(err, boom))
	assert.Empty(t, path)
	assert.Empty(t, mfs.Files("/out"))
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	_, err := Load(mfs, "/out/profile.yaml")
	assert.ErrorContains(t, err, ".json extension")

	_, err = Load(mfs, "/out/missing.json")
	assert.ErrorContains(t, err, "failed to read")

	w, err := mfs.Create("/out/broken.json")
	require.NoError(t, err)
	_, _ = w.Write([]byte(`{"name": `))
	require.NoError(t, w.Close())
	_, err = Load(mfs, "/out/broken.json")
	assert.ErrorContains(t, err, "failed to parse")
}

func TestLogStreams(t *testing.T) {
	var ops, diag bytes.Buffer
	SetLogWriters(&ops, &diag, nil)
	defer SetLogWriters(nil, nil, nil)

	rec, err := Build(smallPattern(t), Cube1Constants())
	require.NoError(t, err)
	_, err = Write(fsutil.NewMemoryFileSystem(), "/out", rec)
	require.NoError(t, err)
	assert.Contains(t, diag.String(), "[profile] ")
	assert.Contains(t, diag.String(), "wrote /out/BF1_250_20_10_10_3_2.json")

	failing := fsutil.NewMemoryFileSystem()
	failing.FailCreate = errors.New("no space")
	_, err = Write(failing, "/out", rec)
	require.Error(t, err)
	assert.Contains(t, ops.String(), "no space")
}
