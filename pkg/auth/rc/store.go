package rc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"github.com/adrg/xdg"
	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	errUtils "github.com/serverless/sfauth/errors"
	log "github.com/serverless/sfauth/pkg/logger"
)

const (
	// FilePermission is the mode of every rc file written.
	FilePermission = 0o600

	// DefaultFileName is the production rc file name.
	DefaultFileName = ".serverlessrc"

	backupSuffix = ".bak"
	lockSuffix   = ".lock"
)

// Store reads and patches an rc file pair: a global file in the home directory
// and an optional local file in the working directory that overrides it.
type Store struct {
	fileName string
	homeDir  string
	workDir  string
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithHomeDir sets the directory holding the global file.
func WithHomeDir(dir string) Option {
	return func(s *Store) {
		s.homeDir = dir
	}
}

// WithWorkDir sets the directory holding the local override file.
func WithWorkDir(dir string) Option {
	return func(s *Store) {
		s.workDir = dir
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore returns a Store for fileName, e.g. ".serverlessrc" or ".serverlessdevrc".
func NewStore(fileName string, opts ...Option) *Store {
	if fileName == "" {
		fileName = DefaultFileName
	}
	s := &Store{fileName: fileName, homeDir: xdg.Home, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FileName returns the rc file name.
func (s *Store) FileName() string {
	return s.fileName
}

// DefaultPath is where a new global file is created: ~/<name>.
func (s *Store) DefaultPath() string {
	return filepath.Join(s.homeDir, s.fileName)
}

// GlobalPath returns ~/.config/<name> when only that file exists, otherwise ~/<name>.
func (s *Store) GlobalPath() string {
	configPath := filepath.Join(s.homeDir, ".config", s.fileName)
	defaultPath := s.DefaultPath()
	if fileExists(configPath) && !fileExists(defaultPath) {
		return configPath
	}
	return defaultPath
}

// LocalPath returns <workdir>/<name>.
func (s *Store) LocalPath() (string, error) {
	dir := s.workDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("%w: %w", errUtils.ErrLoadRcFile, err)
		}
		dir = wd
	}
	return filepath.Join(dir, s.fileName), nil
}

func (s *Store) lockPath() string {
	return s.DefaultPath() + lockSuffix
}

// Load reads the global file, creating it when missing or corrupt, and merges the local file over it.
func (s *Store) Load() (*Config, error) {
	global, err := s.loadGlobal()
	if err != nil {
		return nil, err
	}

	local, err := s.loadLocal()
	if err != nil {
		return nil, err
	}

	merged, err := mergeDocuments(global, local)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(merged, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrLoadRcFile, err)
	}
	cfg.normalize()
	return &cfg, nil
}

// loadGlobal returns the global document, writing a default one when there is none usable.
func (s *Store) loadGlobal() ([]byte, error) {
	doc, ok, err := s.readGlobal()
	if err != nil || ok {
		return doc, err
	}

	err = withFileLock(s.lockPath(), func() error {
		// Another process may have created it while we waited.
		if doc, ok, err = s.readGlobal(); err != nil || ok {
			return err
		}
		doc, err = s.createDefault()
		return err
	})
	return doc, err
}

// readGlobal returns the global document and whether it was usable.
// A corrupt file is moved aside to <path>.bak.
func (s *Store) readGlobal() ([]byte, bool, error) {
	path := s.GlobalPath()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("%w: %s: %w", errUtils.ErrLoadRcFile, path, err)
	case len(bytes.TrimSpace(data)) == 0:
		return nil, false, nil
	case !isJSONObject(data):
		backupCorrupt(path)
		return nil, false, nil
	}
	return data, true, nil
}

// loadLocal returns the local document, or nil when there is none.
func (s *Store) loadLocal() ([]byte, error) {
	path, err := s.LocalPath()
	if err != nil {
		return nil, err
	}
	if path == s.GlobalPath() {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		log.Debug("Ignoring unreadable local rc file", "path", path, "error", err)
		return nil, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !isJSONObject(data) {
		backupCorrupt(path)
		return nil, nil
	}
	return data, nil
}

func (s *Store) createDefault() ([]byte, error) {
	created := s.now().Unix()
	cfg := Config{
		FrameworkID:   uuid.NewString(),
		Meta:          Meta{CreatedAt: &created},
		Users:         map[string]*UserSession{},
		AccessKeys:    AccessKeys{Orgs: map[string]*LicenseOrg{}},
		Notifications: map[string]Notification{},
	}
	doc, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrWriteRcFile, err)
	}

	path := s.DefaultPath()
	doc, err = s.writeDocument(path, doc)
	if err != nil {
		return nil, err
	}
	log.Debug("Created rc file", "path", path)
	return doc, nil
}

// writeDocument stamps meta.updated_at, pretty prints and atomically replaces path.
func (s *Store) writeDocument(path string, doc []byte) ([]byte, error) {
	doc, err := ensureObject(doc, "meta")
	if err != nil {
		return nil, err
	}
	if doc, err = sjson.SetBytes(doc, "meta.updated_at", s.now().Unix()); err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrWriteRcFile, err)
	}
	doc = []byte(gjson.GetBytes(doc, "@pretty").Raw)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errUtils.ErrWriteRcFile, path, err)
	}
	if err := renameio.WriteFile(path, doc, FilePermission); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errUtils.ErrWriteRcFile, path, err)
	}
	// Mode must not depend on the umask.
	if err := os.Chmod(path, FilePermission); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errUtils.ErrWriteRcFile, path, err)
	}
	return doc, nil
}

// update patches the global document under the file lock. Local overrides are never written.
func (s *Store) update(patch func(doc []byte) ([]byte, error)) error {
	return withFileLock(s.lockPath(), func() error {
		doc, ok, err := s.readGlobal()
		if err != nil {
			return err
		}
		path := s.GlobalPath()
		if !ok {
			if doc, err = s.createDefault(); err != nil {
				return err
			}
			path = s.DefaultPath()
		}

		patched, err := patch(doc)
		if err != nil {
			return err
		}
		_, err = s.writeDocument(path, patched)
		return err
	})
}

func mergeDocuments(global, local []byte) ([]byte, error) {
	if len(local) == 0 {
		return global, nil
	}

	var dst, src map[string]any
	if err := json.Unmarshal(global, &dst); err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrLoadRcFile, err)
	}
	if err := json.Unmarshal(local, &src); err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrLoadRcFile, err)
	}
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("%w: merging local rc file: %w", errUtils.ErrLoadRcFile, err)
	}

	merged, err := json.Marshal(dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrLoadRcFile, err)
	}
	return merged, nil
}

func backupCorrupt(path string) {
	backup := path + backupSuffix
	if err := os.Rename(path, backup); err != nil {
		log.Debug("Failed to move corrupt rc file aside", "path", path, "error", err)
		return
	}
	log.Warn("The rc file was not valid JSON and has been replaced", "backup", backup)
}

func isJSONObject(data []byte) bool {
	return gjson.ValidBytes(data) && gjson.ParseBytes(data).IsObject()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
