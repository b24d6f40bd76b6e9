package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bangunx/ghup/fsutil"
)

// FilePerm is the mode of the profile file. It may hold tokens.
const FilePerm os.FileMode = 0o600

// DefaultPath returns ~/.config/ghup/accounts.yaml, honouring
// XDG_CONFIG_HOME.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "accounts.yaml")
}

// ConfigDir returns the ghup configuration directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ghup")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "ghup")
	}
	return filepath.Join(home, ".config", "ghup")
}

// Store reads and writes the profile file.
type Store struct {
	path   string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a Store for path. An empty path selects DefaultPath.
func NewStore(path string, opts ...Option) *Store {
	if path == "" {
		path = DefaultPath()
	}
	s := &Store{path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the profile file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the profile file. A missing file yields an empty collection.
// Unparseable content or duplicate names or aliases yield a *CorruptError.
func (s *Store) Load() (*Collection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Collection{}, nil
		}
		return nil, fmt.Errorf("read profile file: %w", err)
	}

	c, err := decode(data)
	if err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}
	if err := c.validate(); err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}
	for i := range c.Accounts {
		for _, w := range c.Accounts[i].Warnings() {
			s.logger.Debug("profile warning", "profile", c.Accounts[i].Name, "warning", w)
		}
	}
	return c, nil
}

// Save writes c atomically with mode 0600.
func (s *Store) Save(c *Collection) error {
	return s.withLock(func() error {
		return s.save(c)
	})
}

// Get loads the file and returns the profile called name.
func (s *Store) Get(name string) (Profile, error) {
	c, err := s.Load()
	if err != nil {
		return Profile{}, err
	}
	p, ok := c.Get(name)
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return *p, nil
}

// AddOrReplace stores p. Without overwrite an existing name fails with
// ErrDuplicateName. An alias already used by another profile fails with
// ErrDuplicateAlias.
func (s *Store) AddOrReplace(p Profile, overwrite bool) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	return s.mutate(func(c *Collection) error {
		return c.Put(p, overwrite)
	})
}

// Remove deletes the profile called name and returns it so the caller can
// clean up its SSH routing.
func (s *Store) Remove(name string) (Profile, error) {
	var removed Profile
	err := s.mutate(func(c *Collection) error {
		var err error
		removed, err = c.Delete(name)
		return err
	})
	return removed, err
}

// Update applies fn to the profile called name. fn may not change the name;
// use Rename for that.
func (s *Store) Update(name string, fn func(*Profile) error) (Profile, error) {
	var updated Profile
	err := s.mutate(func(c *Collection) error {
		cur, ok := c.Get(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		p := cur.Clone()
		if err := fn(&p); err != nil {
			return err
		}
		if p.Name != name {
			return fmt.Errorf("%w: use rename to change the name of %q", ErrInvalidProfile, name)
		}
		p.Normalize()
		if err := p.Validate(); err != nil {
			return err
		}
		updated = p
		return c.Put(p, true)
	})
	return updated, err
}

// Rename changes a profile's name in place. A default SSH alias follows the
// new name; a custom alias is kept.
func (s *Store) Rename(oldName, newName string) (Profile, error) {
	var renamed Profile
	err := s.mutate(func(c *Collection) error {
		cur, ok := c.Get(oldName)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, oldName)
		}
		if _, exists := c.Get(newName); exists {
			return fmt.Errorf("%w: %s", ErrDuplicateName, newName)
		}

		p := cur.Clone()
		p.Name = newName
		if p.SSH != nil && p.SSH.HostAlias == DefaultAlias(p.HostName(), oldName) {
			p.SSH.HostAlias = ""
		}
		p.Normalize()
		if err := p.Validate(); err != nil {
			return err
		}
		if err := c.checkAlias(p, oldName); err != nil {
			return err
		}
		*cur = p
		renamed = p
		return nil
	})
	return renamed, err
}

// mutate runs load, fn, save under the store lock.
func (s *Store) mutate(fn func(*Collection) error) error {
	return s.withLock(func() error {
		c, err := s.Load()
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		return s.save(c)
	})
}

func (s *Store) withLock(fn func() error) error {
	unlock, err := fsutil.Lock(s.path + ".lock")
	if err != nil {
		return &PersistError{Path: s.path, Err: err}
	}
	defer unlock()
	return fn()
}

func (s *Store) save(c *Collection) error {
	if err := c.validate(); err != nil {
		return err
	}
	data, err := encode(c)
	if err != nil {
		return &PersistError{Path: s.path, Err: err}
	}
	if err := fsutil.WriteFileAtomic(s.path, data, FilePerm); err != nil {
		return &PersistError{Path: s.path, Err: err}
	}
	s.logger.Debug("saved profiles", "path", s.path, "count", c.Len())
	return nil
}

func encode(c *Collection) ([]byte, error) {
	if c.Accounts == nil {
		c.Accounts = []Profile{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode profiles: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode profiles: %w", err)
	}
	return buf.Bytes(), nil
}

// decode parses YAML, or JSON when the document starts with '{'. JSON is
// routed through a generic value so unknown fields survive the same way.
func decode(data []byte) (*Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &Collection{}, nil
	}

	if trimmed[0] == '{' {
		var generic map[string]any
		if err := json.Unmarshal(trimmed, &generic); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
		converted, err := yaml.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("convert JSON: %w", err)
		}
		data = converted
	}

	var c Collection
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &c, nil
}
