package ssh

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeyInfo holds information about an SSH public key.
type KeyInfo struct {
	// Path is the path to the public key file.
	Path string

	// PublicKey is the full public key in authorized_keys format.
	PublicKey string

	// KeyType is the key algorithm (e.g., "ssh-ed25519", "ssh-rsa").
	KeyType string

	// Fingerprint is the SHA256 fingerprint of the key.
	Fingerprint string

	// Comment is the optional key comment.
	Comment string
}

// PublicKeyPath returns the companion public key path for a private key.
func PublicKeyPath(keyPath string) string {
	return keyPath + ".pub"
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ReadPublicKey reads and parses an SSH public key file.
func ReadPublicKey(path string) (*KeyInfo, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided path expected
	if err != nil {
		return nil, err
	}

	return ParsePublicKey(path, string(data))
}

// ParsePublicKey parses an SSH public key string.
func ParsePublicKey(path, keyData string) (*KeyInfo, error) {
	keyData = strings.TrimSpace(keyData)
	parts := strings.SplitN(keyData, " ", 3)
	if len(parts) < 2 {
		return nil, ErrInvalidKeyFormat
	}

	keyBytes, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}

	comment := ""
	if len(parts) == 3 {
		comment = strings.TrimSpace(parts[2])
	}

	return &KeyInfo{
		Path:        path,
		PublicKey:   keyData,
		KeyType:     parts[0],
		Fingerprint: ComputeFingerprint(keyBytes),
		Comment:     comment,
	}, nil
}

// ListLocalKeys lists the public keys in the manager's SSH directory,
// in file name order. Unparseable .pub files are skipped.
func (m *Manager) ListLocalKeys() ([]*KeyInfo, error) {
	entries, err := os.ReadDir(m.sshDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSSHKeys
		}
		return nil, fmt.Errorf("read ssh directory: %w", err)
	}

	var keys []*KeyInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pub") {
			continue
		}

		path := filepath.Join(m.sshDir, entry.Name())
		info, err := ReadPublicKey(path)
		if err != nil {
			m.logger.Debug("skipping public key", "path", path, "error", err)
			continue
		}
		keys = append(keys, info)
	}

	if len(keys) == 0 {
		return nil, ErrNoSSHKeys
	}

	return keys, nil
}
