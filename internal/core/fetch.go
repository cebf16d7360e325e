package core

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/edward-yakop/go-vidfetch/internal/misc"
)

const chunkSize = 8 * 1024

var (
	log = misc.NewLogger("Fetch", 2)
)

type HTTPDownload struct {
	client *resty.Client
}

var _ Downloader = &HTTPDownload{}

func NewDownloader() *HTTPDownload {
	return NewDownloaderWithClient(resty.New())
}

// NewDownloaderWithClient uses client for every request. Retries configured on the
// client are left alone, the downloader itself never retries.
func NewDownloaderWithClient(client *resty.Client) *HTTPDownload {
	return &HTTPDownload{
		client: client,
	}
}

// Download streams URL into toFilePath. Failures are returned as *DownloadError, except
// for ctx cancellation which is returned as the wrapped context error. A failed
// transfer may leave a partial file behind.
func (h HTTPDownload) Download(ctx context.Context, URL string, toFilePath string, progress ProgressFunc) (result Result, err error) {
	if progress == nil {
		progress = func(_, _, _ int64) {}
	}
	result.Path = toFilePath

	if result.CreatedDir, err = PrepareDestination(URL, toFilePath); err != nil {
		return result, err
	}

	log.Trace("GET %s -> %s", URL, toFilePath)
	resp, err := h.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(URL)
	if err != nil {
		if ctx.Err() != nil {
			return result, errors.Wrap(ctx.Err(), "Download ["+URL+"] interrupted")
		}
		return result, fetchError(err, URL, toFilePath)
	}

	body := resp.RawBody()
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(body)

	if !resp.IsSuccess() {
		log.Trace("Download %s failed: %s.", URL, resp.Status())
		return result, &DownloadError{
			Kind:       KindHTTP,
			URL:        URL,
			Path:       toFilePath,
			StatusCode: resp.StatusCode(),
			Reason:     statusReason(resp),
		}
	}

	total := int64(-1)
	if resp.RawResponse != nil && resp.RawResponse.ContentLength > 0 {
		total = resp.RawResponse.ContentLength
	}

	result.Size, err = h.saveBodyToDisk(ctx, body, URL, toFilePath, total, progress)
	if err != nil {
		return result, err
	}

	log.Trace("Saved %s (%s).", toFilePath, humanize.IBytes(uint64(result.Size)))
	return result, nil
}

func (h HTTPDownload) saveBodyToDisk(ctx context.Context, body io.Reader, URL, path string, total int64, progress ProgressFunc) (filesize int64, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return 0, fileError(errors.Wrap(err, "Create file ["+path+"] failed"), URL, path)
	}

	buf := make([]byte, chunkSize)
	var chunks int64
	progress(chunks, chunkSize, total)
	for {
		n, rerr := readChunk(body, buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				_ = f.Close()
				return filesize, fileError(errors.Wrap(werr, "Saving ["+path+"] failed"), URL, path)
			}
			filesize += int64(n)
			chunks++
			progress(chunks, chunkSize, total)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			_ = f.Close()
			if ctx.Err() != nil {
				return filesize, errors.Wrap(ctx.Err(), "Download ["+URL+"] interrupted")
			}
			return filesize, fetchError(errors.Wrap(rerr, "Reading body failed"), URL, path)
		}
	}

	if err = f.Close(); err != nil {
		return filesize, fileError(errors.Wrap(err, "Closing ["+path+"] failed"), URL, path)
	}
	return filesize, nil
}

// readChunk fills buf from r so that only the last chunk of a body comes up short.
// Unlike io.ReadFull the reader's own error is returned as is, which keeps a body cut
// off before its Content-Length distinguishable from a clean end.
func readChunk(r io.Reader, buf []byte) (n int, err error) {
	for n < len(buf) && err == nil {
		var nn int
		nn, err = r.Read(buf[n:])
		n += nn
	}
	return n, err
}

// PrepareDestination makes sure the directory holding path exists. It returns the
// directory when it had to be created, "" otherwise.
func PrepareDestination(URL, path string) (string, error) {
	dir, err := ensureParentDir(path)
	if err != nil {
		return "", fileError(err, URL, path)
	}
	return dir, nil
}

// ensureParentDir creates the directory holding path and returns it, or "" when it
// was already there.
func ensureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)
	if misc.IsFileExists(dir) {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "Create folder ["+dir+"] failed")
	}
	return dir, nil
}

func statusReason(resp *resty.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status(), strconv.Itoa(resp.StatusCode())))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode())
	}
	return reason
}
