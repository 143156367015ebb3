package vault

import (
	"epd/internal/structures"
	"path/filepath"
)

const (
	profilesFileName = "profiles.vault"
	usageFileName    = "usage.vault"
	keyFileName      = "vault.key"
)

func ProfilesPath(conf *structures.Config) string {
	return filepath.Join(conf.Persistence.Dir, profilesFileName)
}

func UsagePath(conf *structures.Config) string {
	return filepath.Join(conf.Persistence.Dir, usageFileName)
}

// KeyPath is deliberately a sibling of the data files, not inside them:
// the key must survive any data-file rewrite and is never part of a
// snapshot.
func KeyPath(conf *structures.Config) string {
	return filepath.Join(conf.Persistence.Dir, keyFileName)
}
