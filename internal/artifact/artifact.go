package artifact

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"ocrsvc/internal/domain"
)

// Artifact is the canonical on-disk form of a request payload. It is owned by
// exactly one request, which must call Release when done (normally via defer).
type Artifact struct {
	Path string
	Kind domain.InputKind

	once sync.Once
}

// Dir returns the directory holding the artifact.
func (a *Artifact) Dir() string {
	return filepath.Dir(a.Path)
}

// Release deletes the backing file. It is safe to call more than once; only the
// first call acts. Removal failures are logged and otherwise ignored, and a file
// that is already gone counts as released.
func (a *Artifact) Release() {
	a.once.Do(func() {
		if err := os.Remove(a.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("artifact.Release: failed to remove %s: %v", a.Path, err)
		}
	})
}
