package core

import "context"

// ProgressFunc is called before the first chunk and after every chunk of a body.
// total is the announced body size, or -1 when the server did not send one.
type ProgressFunc func(chunks, chunkSize, total int64)

// Result describes a finished download.
type Result struct {
	Path string
	Size int64
	// CreatedDir is the parent directory made for Path, empty if it already existed.
	CreatedDir string
}

// Downloader interface...
type Downloader interface {
	Download(ctx context.Context, URL string, toFilePath string, progress ProgressFunc) (Result, error)
}
