package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/maisondecor/maison/internal/errors"
)

// sessionFileName is the fixed key under which the serialized session
// lives inside the storage directory.
const sessionFileName = "session.json"

// FileStore persists the session as a JSON file in a dot-directory,
// overwritten on every successful login/refresh and removed on logout.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the full path of the session file.
func (fs *FileStore) Path() string {
	return filepath.Join(fs.dir, sessionFileName)
}

// Load reads the persisted session. It returns (nil, nil) when no
// session is stored, and an error with code SESSION-001 when the file
// exists but does not decode.
func (fs *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(fs.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read session file", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSessionCorrupt, "persisted session is not valid JSON", err)
	}

	// An orphaned token without an identity is treated as corrupt.
	if s.AccessToken != "" && s.Identity.IsZero() {
		return nil, errors.New(errors.ErrCodeSessionCorrupt, "persisted session carries a token without an identity")
	}

	return &s, nil
}

// Save writes the session atomically: temp file in the same directory,
// then rename over the fixed name.
func (fs *FileStore) Save(s *Session) error {
	if err := os.MkdirAll(fs.dir, 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to create storage directory", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeSessionPersist, "failed to encode session", err)
	}

	tmp, err := os.CreateTemp(fs.dir, sessionFileName+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to create temp session file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write session file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to close session file", err)
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to set session file mode", err)
	}

	if err := os.Rename(tmpName, fs.Path()); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to replace session file", err)
	}

	return nil
}

// Clear removes the persisted session. Missing files are not an error.
func (fs *FileStore) Clear() error {
	if err := os.Remove(fs.Path()); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to remove session file", err)
	}
	return nil
}
