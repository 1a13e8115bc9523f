package disk

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkstudico/kinaflix-TV/internal/repository/storage"
)

func TestStoreAndOpen(t *testing.T) {
	r, err := NewRepo(t.TempDir())
	require.NoError(t, err)

	stored, err := r.Store("video-1", "movie.mp4", strings.NewReader("content"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), stored.Size)

	f, info, err := r.Open("video-1")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
	assert.Equal(t, int64(7), info.Size)
}

func TestOpenMissing(t *testing.T) {
	r, err := NewRepo(t.TempDir())
	require.NoError(t, err)

	_, _, err = r.Open("missing")
	assert.ErrorIs(t, err, storage.ErrFileNotFound)
}

func TestRemove(t *testing.T) {
	r, err := NewRepo(t.TempDir())
	require.NoError(t, err)

	_, err = r.Store("video-1", "movie.mp4", strings.NewReader("content"))
	require.NoError(t, err)

	require.NoError(t, r.Remove("video-1"))
	assert.ErrorIs(t, r.Remove("video-1"), storage.ErrFileNotFound)
}

func TestOlderThan(t *testing.T) {
	r, err := NewRepo(t.TempDir())
	require.NoError(t, err)

	_, err = r.Store("video-1", "movie.mp4", strings.NewReader("content"))
	require.NoError(t, err)

	fileIds, err := r.OlderThan(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, fileIds)

	fileIds, err = r.OlderThan(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"video-1"}, fileIds)
}
