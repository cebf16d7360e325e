package misc

import (
	"io/fs"
	"os"

	"github.com/pkg/errors"
)

// IsFileExists reports whether path exists. Stat failures other than "not exist"
// count as existing, the following open reports the real problem.
func IsFileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
