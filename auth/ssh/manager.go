package ssh

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	gossh "golang.org/x/crypto/ssh"

	"github.com/bangunx/ghup/fsutil"
)

// File modes for key material.
const (
	PrivateKeyPerm os.FileMode = 0o600
	PublicKeyPerm  os.FileMode = 0o644
)

// KeyPair describes a private key on disk and its public half.
type KeyPair struct {
	KeyInfo

	// PrivatePath is the path of the private key file.
	PrivatePath string

	// Encrypted is true when the private key is passphrase protected.
	Encrypted bool

	// PermissionsFixed is true when Inspect tightened the private key mode.
	PermissionsFixed bool
}

// Manager creates, imports and inspects key files.
type Manager struct {
	sshDir string
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithSSHDir sets the directory scanned by ListLocalKeys and used for
// default key paths. Defaults to ~/.ssh.
func WithSSHDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.sshDir = ExpandHome(dir)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sshDir: ExpandHome("~/.ssh"),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SSHDir returns the managed SSH directory.
func (m *Manager) SSHDir() string {
	return m.sshDir
}

// DefaultKeyPath returns the key path suggested for a new profile.
func (m *Manager) DefaultKeyPath(profile string) string {
	return filepath.Join(m.sshDir, "id_ed25519_"+profile)
}

// Generate creates an ed25519 keypair in OpenSSH format at keyPath and
// keyPath+".pub". It fails with ErrKeyExists when either file exists and
// overwrite is false. The private key is verified to be 0600 after writing.
func (m *Manager) Generate(keyPath, comment string, overwrite bool) (*KeyPair, error) {
	keyPath = ExpandHome(keyPath)
	pubPath := PublicKeyPath(keyPath)

	if !overwrite && (fsutil.Exists(keyPath) || fsutil.Exists(pubPath)) {
		return nil, fmt.Errorf("%w: %s", ErrKeyExists, keyPath)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}

	block, err := gossh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}

	sshPub, err := gossh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("encode public key: %w", err)
	}

	if err := m.writeKeyPair(keyPath, pem.EncodeToMemory(block), authorizedLine(sshPub, comment)); err != nil {
		return nil, err
	}

	m.logger.Debug("generated ssh key", "path", keyPath, "fingerprint", gossh.FingerprintSHA256(sshPub))
	return m.keyPair(keyPath, false)
}

// Import validates the private key at src and copies it to dest along with
// its public half. A companion src+".pub" is copied when present, otherwise
// the public key is derived from the private key. Encrypted keys are accepted
// only when their public half is recoverable.
func (m *Manager) Import(src, dest string, overwrite bool) (*KeyPair, error) {
	src = ExpandHome(src)
	dest = ExpandHome(dest)

	data, err := os.ReadFile(src) //nolint:gosec // user-provided path expected
	if err != nil {
		return nil, fmt.Errorf("read key %s: %w", src, err)
	}
	if err := validatePEM(data); err != nil {
		return nil, err
	}

	pub, encrypted, err := publicFromPrivate(data)
	if err != nil {
		return nil, err
	}

	pubLine, err := companionPublicKey(PublicKeyPath(src), pub)
	if err != nil {
		return nil, err
	}
	if pubLine == nil {
		if pub == nil {
			return nil, fmt.Errorf("%w: encrypted key without a recoverable public key; provide %s",
				ErrInvalidKeyFormat, PublicKeyPath(src))
		}
		pubLine = authorizedLine(pub, "")
	}

	same := samePath(src, dest)
	if !same && !overwrite && (fsutil.Exists(dest) || fsutil.Exists(PublicKeyPath(dest))) {
		return nil, fmt.Errorf("%w: %s", ErrKeyExists, dest)
	}

	if same {
		if err := m.NormalizePermissions(dest); err != nil {
			return nil, err
		}
		if !fsutil.Exists(PublicKeyPath(dest)) {
			if err := fsutil.WriteFileAtomic(PublicKeyPath(dest), pubLine, PublicKeyPerm); err != nil {
				return nil, fmt.Errorf("write public key: %w", err)
			}
		}
	} else if err := m.writeKeyPair(dest, data, pubLine); err != nil {
		return nil, err
	}

	m.logger.Debug("imported ssh key", "src", src, "dest", dest, "encrypted", encrypted)
	return m.keyPair(dest, encrypted)
}

// Inspect reads the public half of keyPath and tightens the private key's
// permissions when group or other bits are set.
func (m *Manager) Inspect(keyPath string) (*KeyPair, error) {
	keyPath = ExpandHome(keyPath)

	info, err := os.Stat(keyPath)
	if err != nil {
		return nil, fmt.Errorf("private key %s: %w", keyPath, err)
	}

	fixed := false
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o077 != 0 {
		if err := m.NormalizePermissions(keyPath); err != nil {
			return nil, err
		}
		m.logger.Info("tightened private key permissions", "path", keyPath, "was", info.Mode().Perm().String())
		fixed = true
	}

	encrypted := false
	if !fsutil.Exists(PublicKeyPath(keyPath)) {
		data, err := os.ReadFile(keyPath) //nolint:gosec // user-provided path expected
		if err != nil {
			return nil, fmt.Errorf("read key %s: %w", keyPath, err)
		}
		pub, enc, err := publicFromPrivate(data)
		if err != nil {
			return nil, err
		}
		if pub == nil {
			return nil, fmt.Errorf("%w: no public key for %s", ErrInvalidKeyFormat, keyPath)
		}
		encrypted = enc
		if err := fsutil.WriteFileAtomic(PublicKeyPath(keyPath), authorizedLine(pub, ""), PublicKeyPerm); err != nil {
			return nil, fmt.Errorf("write public key: %w", err)
		}
	}

	kp, err := m.keyPair(keyPath, encrypted)
	if err != nil {
		return nil, err
	}
	kp.PermissionsFixed = fixed
	return kp, nil
}

// NormalizePermissions sets path to 0600 and verifies that no group or
// other bits remain. The check is skipped on Windows, where POSIX modes
// are not enforced.
func (m *Manager) NormalizePermissions(path string) error {
	if err := os.Chmod(path, PrivateKeyPerm); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return verifyPrivatePerm(path)
}

// EnsureUniquePath fails with a *KeyPathCollisionError when a profile other
// than editing already uses keyPath. owners maps profile names to their key
// paths.
func (m *Manager) EnsureUniquePath(keyPath string, owners map[string]string, editing string) error {
	names := make([]string, 0, len(owners))
	for name := range owners {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == editing || owners[name] == "" {
			continue
		}
		if samePath(owners[name], keyPath) {
			return &KeyPathCollisionError{Path: keyPath, Profile: name}
		}
	}
	return nil
}

func (m *Manager) writeKeyPair(keyPath string, private, public []byte) error {
	if err := os.MkdirAll(filepath.Dir(keyPath), fsutil.DirPerm); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	if err := fsutil.WriteFileAtomic(keyPath, private, PrivateKeyPerm); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	if err := verifyPrivatePerm(keyPath); err != nil {
		_ = os.Remove(keyPath)
		return err
	}
	if err := fsutil.WriteFileAtomic(PublicKeyPath(keyPath), public, PublicKeyPerm); err != nil {
		_ = os.Remove(keyPath)
		return fmt.Errorf("write public key: %w", err)
	}
	return nil
}

func (m *Manager) keyPair(keyPath string, encrypted bool) (*KeyPair, error) {
	info, err := ReadPublicKey(PublicKeyPath(keyPath))
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	return &KeyPair{KeyInfo: *info, PrivatePath: keyPath, Encrypted: encrypted}, nil
}

func verifyPrivatePerm(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return fmt.Errorf("%w: %s has mode %s", ErrInsecurePermissions, path, perm)
	}
	return nil
}

// validatePEM checks for a private key PEM block with a non-empty body.
func validatePEM(data []byte) error {
	block, _ := pem.Decode(data)
	if block == nil {
		return fmt.Errorf("%w: no PEM block found", ErrInvalidKeyFormat)
	}
	if !strings.HasSuffix(block.Type, "PRIVATE KEY") {
		return fmt.Errorf("%w: unexpected PEM type %q", ErrInvalidKeyFormat, block.Type)
	}
	if len(block.Bytes) == 0 {
		return fmt.Errorf("%w: empty key body", ErrInvalidKeyFormat)
	}
	return nil
}

// publicFromPrivate parses a private key and returns its public half. For
// encrypted keys the public key is nil unless the container exposes it.
func publicFromPrivate(data []byte) (gossh.PublicKey, bool, error) {
	signer, err := gossh.ParsePrivateKey(data)
	if err == nil {
		return signer.PublicKey(), false, nil
	}
	var missing *gossh.PassphraseMissingError
	if errors.As(err, &missing) {
		return missing.PublicKey, true, nil
	}
	return nil, false, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
}

// companionPublicKey reads pubPath when present and checks it against the
// public key derived from the private half. Returns nil when there is no
// companion file.
func companionPublicKey(pubPath string, derived gossh.PublicKey) ([]byte, error) {
	data, err := os.ReadFile(pubPath) //nolint:gosec // user-provided path expected
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read public key %s: %w", pubPath, err)
	}

	pub, _, _, _, err := gossh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidKeyFormat, pubPath, err)
	}
	if derived != nil && !bytes.Equal(pub.Marshal(), derived.Marshal()) {
		return nil, fmt.Errorf("%w: %s does not match the private key", ErrInvalidKeyFormat, pubPath)
	}
	return append(bytes.TrimSpace(data), '\n'), nil
}

func authorizedLine(pub gossh.PublicKey, comment string) []byte {
	line := bytes.TrimSpace(gossh.MarshalAuthorizedKey(pub))
	if comment != "" {
		line = append(line, ' ')
		line = append(line, comment...)
	}
	return append(line, '\n')
}

func samePath(a, b string) bool {
	ca, errA := filepath.Abs(ExpandHome(a))
	cb, errB := filepath.Abs(ExpandHome(b))
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return ca == cb
}
