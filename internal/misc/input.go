package misc

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// StdinName selects standard input in OpenInput.
const StdinName = "-"

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error {
	return r.close()
}

// OpenInput opens a job list. Empty or "-" means stdin, which is never closed.
// Files ending in .xz or .lzma are decompressed on the fly.
func OpenInput(name string, stdin io.Reader) (io.ReadCloser, error) {
	if name == "" || name == StdinName {
		return io.NopCloser(stdin), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "Open input ["+name+"] failed")
	}

	var r io.Reader
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xz":
		r, err = xz.NewReader(f)
	case ".lzma":
		r, err = lzma.NewReader(f)
	default:
		r = f
	}
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "Decompress input ["+name+"] failed")
	}

	return readCloser{Reader: r, close: f.Close}, nil
}
