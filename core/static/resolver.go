package static

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// UriStatus is the outcome of resolving a request path inside a host's
// content directory.
type UriStatus int

const (
	// StatusResolved: the path names a readable regular file.
	StatusResolved UriStatus = iota
	// StatusNonExistent: nothing lives at the path.
	StatusNonExistent
	// StatusOutOfRange: the canonical path escapes the content
	// directory.
	StatusOutOfRange
	// StatusIsDirectory: the path names a directory.
	StatusIsDirectory
)

// Resolution is a resolved request path.
type Resolution struct {
	Status UriStatus
	// Path is the canonical absolute path of the file or directory.
	// Empty unless Status is StatusResolved or StatusIsDirectory.
	Path string
	// Rel is Path relative to the content directory, slash-separated
	// with a leading "/" ("" for the content directory itself).
	Rel string
	// Size of the resolved file, for StatusResolved.
	Size int64
}

// Resolve maps a request path to a location inside contentDir, which
// must already be canonical. The request path is joined under
// contentDir with its leading "/" stripped so it can never become
// absolute, the joined path is canonicalized, and the result must
// still sit under contentDir. The prefix check runs on the canonical
// path, never the request string; that is what blocks ".." segments
// and symlink escapes alike.
//
// A non-nil error is a server fault (unexpected I/O failure), not a
// property of the request.
func Resolve(contentDir, requestPath string) (Resolution, error) {
	joined := filepath.Join(contentDir, filepath.FromSlash(strings.TrimPrefix(requestPath, "/")))

	canonical, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ENOTDIR) {
			return Resolution{Status: StatusNonExistent}, nil
		}
		return Resolution{}, err
	}

	if canonical != contentDir &&
		!strings.HasPrefix(canonical, contentDir+string(os.PathSeparator)) {
		return Resolution{Status: StatusOutOfRange}, nil
	}

	info, err := os.Stat(canonical)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Resolution{Status: StatusNonExistent}, nil
		}
		return Resolution{}, err
	}

	rel := filepath.ToSlash(strings.TrimPrefix(canonical, contentDir))
	if info.IsDir() {
		return Resolution{Status: StatusIsDirectory, Path: canonical, Rel: rel}, nil
	}
	return Resolution{Status: StatusResolved, Path: canonical, Rel: rel, Size: info.Size()}, nil
}
