package core

import (
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/url"
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// ErrorKind tells callers which failure category a DownloadError belongs to.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindHTTP
	KindURL
	KindPermission
	KindOS
)

func (k ErrorKind) String() string {
	switch k {
	case KindHTTP:
		return "HTTP"
	case KindURL:
		return "URL"
	case KindPermission:
		return "Permission"
	case KindOS:
		return "OS"
	default:
		return "Unexpected"
	}
}

// DownloadError describes why a single download failed.
type DownloadError struct {
	Kind ErrorKind
	URL  string
	Path string

	// StatusCode and Reason are set for KindHTTP.
	StatusCode int
	Reason     string

	Err error
}

func (e *DownloadError) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("http error %d: %s (%s)", e.StatusCode, e.Reason, e.URL)
	case KindURL:
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("saving %s: %v", e.Path, e.Err)
	}
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// Cause lets errors.Cause reach the underlying error.
func (e *DownloadError) Cause() error {
	return e.Err
}

// Detail is the innermost error message, without the wrapping added along the way.
func (e *DownloadError) Detail() string {
	if e.Err == nil {
		return e.Reason
	}
	return errors.Cause(e.Err).Error()
}

// TypeName is the Go type of the innermost error.
func (e *DownloadError) TypeName() string {
	if e.Err == nil {
		return fmt.Sprintf("%T", e)
	}
	return fmt.Sprintf("%T", errors.Cause(e.Err))
}

// fileError classifies a failure touching the destination file or its directory.
func fileError(err error, rawURL, path string) *DownloadError {
	kind := KindUnexpected
	var pathErr *fs.PathError
	var linkErr *os.LinkError
	var errno syscall.Errno
	switch {
	case errors.Is(err, fs.ErrPermission):
		kind = KindPermission
	case errors.As(err, &pathErr), errors.As(err, &linkErr), errors.As(err, &errno):
		kind = KindOS
	}
	return &DownloadError{Kind: kind, URL: rawURL, Path: path, Err: err}
}

// fetchError classifies a failure talking to the server or reading the body.
func fetchError(err error, rawURL, path string) *DownloadError {
	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.As(err, &urlErr):
		return &DownloadError{Kind: KindURL, URL: rawURL, Path: path, Err: errors.Wrap(urlErr.Err, "request failed")}
	case errors.As(err, &netErr), errors.Is(err, io.ErrUnexpectedEOF):
		return &DownloadError{Kind: KindURL, URL: rawURL, Path: path, Err: err}
	}
	return &DownloadError{Kind: KindUnexpected, URL: rawURL, Path: path, Err: err}
}
