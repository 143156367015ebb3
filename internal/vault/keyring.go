package vault

import (
	"encoding/hex"
	"epd/internal/providers"
	"epd/internal/structures"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"
)

// keyHexLen is 64 hex characters: two concatenated 128-bit UUIDs,
// a 256-bit key.
const keyHexLen = 64

// Keyring owns the vault encryption key. The key is created exactly once
// and persisted separately from all profile data; regenerating it would
// orphan every previously sealed file, so an existing key file is never
// overwritten under any circumstances.
type Keyring struct {
	key []byte
}

func NewKeyring(conf *structures.Config, logger providers.Logger) (*Keyring, error) {
	if err := os.MkdirAll(conf.Persistence.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("create persistence dir: %w", err)
	}

	path := KeyPath(conf)
	material, created, err := getOrCreateKeyMaterial(path)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Infof(providers.TypeApp, "Generated new vault key at %s", path)
	}

	key, err := hex.DecodeString(material)
	if err != nil {
		return nil, fmt.Errorf("vault key file %s is not valid hex: %w", path, err)
	}

	return &Keyring{key: key}, nil
}

// getOrCreateKeyMaterial is the atomic get-or-create: O_EXCL guarantees
// that when two paths race to create the key, exactly one wins and the
// other reads the winner's key.
func getOrCreateKeyMaterial(path string) (string, bool, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err == nil {
		material := generateKeyMaterial()
		if _, werr := file.WriteString(material); werr != nil {
			file.Close()
			os.Remove(path)
			return "", false, fmt.Errorf("write vault key: %w", werr)
		}
		if serr := file.Sync(); serr != nil {
			file.Close()
			os.Remove(path)
			return "", false, fmt.Errorf("sync vault key: %w", serr)
		}
		if cerr := file.Close(); cerr != nil {
			os.Remove(path)
			return "", false, fmt.Errorf("close vault key: %w", cerr)
		}
		return material, true, nil
	}

	if !errors.Is(err, fs.ErrExist) {
		return "", false, fmt.Errorf("create vault key: %w", err)
	}

	existing, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("read vault key: %w", err)
	}
	material := strings.TrimSpace(string(existing))
	if len(material) != keyHexLen {
		// A malformed key file means the data it sealed is already lost
		// or the file was tampered with. Overwriting it silently would
		// destroy any chance of recovery, so this is fatal.
		return "", false, fmt.Errorf("vault key file %s is malformed (%d chars, want %d); refusing to overwrite", path, len(material), keyHexLen)
	}
	return material, false, nil
}

func generateKeyMaterial() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") +
		strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (k *Keyring) Key() []byte {
	return k.key
}
