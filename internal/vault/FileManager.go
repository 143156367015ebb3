package vault

import (
	"epd/internal/models"
	"epd/internal/providers"
	"epd/internal/services"
	"epd/internal/vault/interfaces"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// FileManager persists the profile store snapshot: JSON → zstd → AEAD →
// atomic rename. The snapshot carries records and index together, so a
// profile write can never become undiscoverable through a half-applied
// index update.
type FileManager struct {
	service    services.ProfileServiceInterface
	compressor interfaces.CompressorInterface
	cipher     interfaces.CipherInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, cipher interfaces.CipherInterface, service services.ProfileServiceInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		cipher:     cipher,
		service:    service,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	snap := f.service.GetSnapshot()

	jsonData, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return sealToFile(fileName, jsonData, f.compressor, f.cipher)
}

func (f *FileManager) LoadFromFile(fileName string) error {
	plain, found, err := openFromFile(fileName, f.compressor, f.cipher)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	var snap models.Snapshot
	if err := json.Unmarshal(plain, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version > models.SnapshotVersion {
		return fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, models.SnapshotVersion)
	}

	for _, childID := range snap.Index {
		raw, ok := snap.Profiles[childID]
		if !ok {
			f.logger.Warnf(providers.TypeApp, "Index entry %s has no record, dropping", childID)
			continue
		}
		f.service.PutRecord(childID, raw)
	}

	// Records that exist without an index entry are still data; re-index
	// them instead of losing them.
	for childID, raw := range snap.Profiles {
		if _, ok := f.service.GetProfile(childID); !ok {
			f.service.PutRecord(childID, raw)
		}
	}
	return nil
}

// sealToFile writes compress(plain) sealed by the cipher. The write is
// atomic: tmp file, fsync, rename.
func sealToFile(fileName string, plain []byte, compressor interfaces.CompressorInterface, cipher interfaces.CipherInterface) error {
	compressed, err := compressor.Compress(plain)
	if err != nil {
		return err
	}
	sealed, err := cipher.Seal(compressed)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(sealed)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

// openFromFile is the inverse of sealToFile. A missing file is a normal
// first boot, reported as found=false.
func openFromFile(fileName string, compressor interfaces.CompressorInterface, cipher interfaces.CipherInterface) ([]byte, bool, error) {
	sealed, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	compressed, err := cipher.Open(sealed)
	if err != nil {
		return nil, false, err
	}
	plain, err := compressor.Decompress(compressed)
	if err != nil {
		return nil, false, err
	}
	return plain, true, nil
}
