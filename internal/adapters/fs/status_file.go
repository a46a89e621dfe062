package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/insulinmanager/dosectl/internal/domain"
	"github.com/insulinmanager/dosectl/internal/ports"
)

// StatusFileRepository implements ports.StatusRepository using a JSON file.
type StatusFileRepository struct {
	path string
}

// NewStatusFileRepository creates a repository writing to path.
func NewStatusFileRepository(path string) *StatusFileRepository {
	return &StatusFileRepository{path: path}
}

// Load retrieves the last published status from disk.
// Returns an empty status and nil error if no status file exists.
func (r *StatusFileRepository) Load(ctx context.Context) (domain.Status, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Status{}, nil
		}
		return domain.Status{}, err
	}

	var status domain.Status
	if err := json.Unmarshal(data, &status); err != nil {
		return domain.Status{}, err
	}

	return status, nil
}

// Save publishes the status atomically.
// Uses atomic write (write to temp file, then rename) so readers never see a partial file.
func (r *StatusFileRepository) Save(ctx context.Context, status domain.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return err
	}

	tmp := r.path + ".tmp"

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, r.path)
}

// Path returns the full path to the status file.
func (r *StatusFileRepository) Path() string {
	return r.path
}

var _ ports.StatusRepository = (*StatusFileRepository)(nil)
