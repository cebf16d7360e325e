package core

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressCall struct {
	chunks, chunkSize, total int64
}

func newServer(t *testing.T) *httptest.Server {
	payload := strings.Repeat("v", 3*chunkSize+100)
	mux := http.NewServeMux()
	mux.HandleFunc("/video.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(len(payload)))
		_, _ = w.Write([]byte(payload))
	})
	mux.HandleFunc("/chunked.mp4", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("abc"))
		w.(http.Flusher).Flush()
		_, _ = w.Write([]byte("def"))
	})
	mux.HandleFunc("/trickle.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(64*1024))
		piece := []byte(strings.Repeat("t", 1024))
		for i := 0; i < 64; i++ {
			_, _ = w.Write(piece)
			w.(http.Flusher).Flush()
		}
	})
	mux.HandleFunc("/truncated.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte(strings.Repeat("x", 50)))
	})
	mux.HandleFunc("/missing.mp4", http.NotFound)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadStreamsToFile(t *testing.T) {
	srv := newServer(t)
	target := filepath.Join(t.TempDir(), "nested", "dir", "clip.mp4")

	var calls []progressCall
	result, err := NewDownloader().Download(context.Background(), srv.URL+"/video.mp4", target,
		func(chunks, size, total int64) {
			calls = append(calls, progressCall{chunks, size, total})
		})
	require.NoError(t, err)

	assert.Equal(t, target, result.Path)
	assert.Equal(t, filepath.Dir(target), result.CreatedDir)
	assert.Equal(t, int64(3*chunkSize+100), result.Size)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Len(t, data, 3*chunkSize+100)

	require.NotEmpty(t, calls)
	assert.Equal(t, progressCall{0, chunkSize, int64(3*chunkSize + 100)}, calls[0])
	for i, c := range calls {
		assert.Equal(t, int64(i), c.chunks)
		assert.Equal(t, int64(3*chunkSize+100), c.total)
	}
}

func TestDownloadProgressCountsFullChunks(t *testing.T) {
	srv := newServer(t)
	target := filepath.Join(t.TempDir(), "trickle.mp4")

	var calls []progressCall
	result, err := NewDownloader().Download(context.Background(), srv.URL+"/trickle.mp4", target,
		func(chunks, size, total int64) {
			calls = append(calls, progressCall{chunks, size, total})
		})
	require.NoError(t, err)
	assert.Equal(t, int64(64*1024), result.Size)

	// 1 KiB network writes still add up to whole 8 KiB chunks
	require.Len(t, calls, 1+64*1024/chunkSize)
	for _, c := range calls {
		assert.LessOrEqual(t, c.chunks*c.chunkSize, result.Size)
	}
	last := calls[len(calls)-1]
	assert.Equal(t, result.Size, last.chunks*last.chunkSize)
}

func TestDownloadShortLastChunk(t *testing.T) {
	srv := newServer(t)
	target := filepath.Join(t.TempDir(), "video.mp4")

	var chunks int64
	_, err := NewDownloader().Download(context.Background(), srv.URL+"/video.mp4", target,
		func(c, _, _ int64) {
			chunks = c
		})
	require.NoError(t, err)
	assert.Equal(t, int64(4), chunks)
}

func TestDownloadTruncatedBody(t *testing.T) {
	srv := newServer(t)
	target := filepath.Join(t.TempDir(), "truncated.mp4")

	_, err := NewDownloader().Download(context.Background(), srv.URL+"/truncated.mp4", target, nil)

	var dlErr *DownloadError
	require.True(t, errors.As(err, &dlErr))
	assert.Equal(t, KindURL, dlErr.Kind)
}

func TestReadChunkFillsBuffer(t *testing.T) {
	r := iotest.OneByteReader(strings.NewReader("abcdefghij"))
	buf := make([]byte, 4)

	n, err := readChunk(r, buf)
	assert.NoError(t, err)
	assert.Equal(t, "abcd", string(buf[:n]))

	n, _ = readChunk(r, buf)
	assert.Equal(t, "efgh", string(buf[:n]))

	n, err = readChunk(r, buf)
	assert.Equal(t, "ij", string(buf[:n]))
	assert.Equal(t, io.EOF, err)
}

func TestDownloadUnknownLength(t *testing.T) {
	srv := newServer(t)
	target := filepath.Join(t.TempDir(), "chunked.mp4")

	var totals []int64
	result, err := NewDownloader().Download(context.Background(), srv.URL+"/chunked.mp4", target,
		func(_, _, total int64) {
			totals = append(totals, total)
		})
	require.NoError(t, err)
	assert.Empty(t, result.CreatedDir)
	assert.Equal(t, int64(6), result.Size)
	for _, total := range totals {
		assert.Equal(t, int64(-1), total)
	}
}

func TestDownloadHTTPError(t *testing.T) {
	srv := newServer(t)
	target := filepath.Join(t.TempDir(), "missing.mp4")

	_, err := NewDownloader().Download(context.Background(), srv.URL+"/missing.mp4", target, nil)

	var dlErr *DownloadError
	require.True(t, errors.As(err, &dlErr))
	assert.Equal(t, KindHTTP, dlErr.Kind)
	assert.Equal(t, http.StatusNotFound, dlErr.StatusCode)
	assert.Equal(t, "Not Found", dlErr.Reason)
	assert.Equal(t, srv.URL+"/missing.mp4", dlErr.URL)
	assert.False(t, fileExists(target), "no file is written for an error status")
}

func TestDownloadURLError(t *testing.T) {
	target := filepath.Join(t.TempDir(), "bad.mp4")

	for _, rawURL := range []string{"not-a-url", "http://127.0.0.1:1/video.mp4"} {
		_, err := NewDownloader().Download(context.Background(), rawURL, target, nil)

		var dlErr *DownloadError
		require.Truef(t, errors.As(err, &dlErr), "%s: %v", rawURL, err)
		assert.Equal(t, KindURL, dlErr.Kind, rawURL)
		assert.NotEmpty(t, dlErr.Detail())
	}
}

func TestDownloadOSError(t *testing.T) {
	srv := newServer(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	// parent "directory" is a regular file
	target := filepath.Join(blocker, "clip.mp4")
	_, err := NewDownloader().Download(context.Background(), srv.URL+"/video.mp4", target, nil)

	var dlErr *DownloadError
	require.True(t, errors.As(err, &dlErr))
	assert.Equal(t, KindOS, dlErr.Kind)
	assert.Equal(t, target, dlErr.Path)
}

func TestDownloadCancelled(t *testing.T) {
	srv := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDownloader().Download(ctx, srv.URL+"/video.mp4", filepath.Join(t.TempDir(), "x.mp4"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	var dlErr *DownloadError
	assert.False(t, errors.As(err, &dlErr))
}

func TestFileErrorKinds(t *testing.T) {
	perm := &fs.PathError{Op: "open", Path: "/root/x.mp4", Err: fs.ErrPermission}
	assert.Equal(t, KindPermission, fileError(errors.Wrap(perm, "Create file failed"), "u", "p").Kind)

	other := &fs.PathError{Op: "open", Path: "x", Err: errors.New("disk full")}
	assert.Equal(t, KindOS, fileError(other, "u", "p").Kind)

	assert.Equal(t, KindUnexpected, fileError(errors.New("boom"), "u", "p").Kind)
}

func TestDownloadErrorDetail(t *testing.T) {
	cause := errors.New("no space left on device")
	dlErr := fileError(errors.Wrap(&fs.PathError{Op: "write", Path: "a.mp4", Err: cause}, "Saving [a.mp4] failed"), "u", "a.mp4")
	assert.Equal(t, "write a.mp4: no space left on device", dlErr.Detail())
	assert.Equal(t, "*fs.PathError", dlErr.TypeName())

	unexpected := &DownloadError{Kind: KindUnexpected, Err: errors.New("boom")}
	assert.Equal(t, "*errors.fundamental", unexpected.TypeName())
	assert.Equal(t, "Unexpected", unexpected.Kind.String())
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestPrepareDestination(t *testing.T) {
	dir := t.TempDir()

	created, err := PrepareDestination("u", filepath.Join(dir, "a", "b.mp4"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a"), created)

	created, err = PrepareDestination("u", filepath.Join(dir, "a", "c.mp4"))
	require.NoError(t, err)
	assert.Empty(t, created)

	created, err = PrepareDestination("u", "plain.mp4")
	require.NoError(t, err)
	assert.Empty(t, created)
}
