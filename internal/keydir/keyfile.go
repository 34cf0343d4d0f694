package keydir

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// KeyInfo describes one public key found in a key file
type KeyInfo struct {
	Fingerprint string // Lower-case hex, as rpm prints key ids
	UserIDs     []string
}

// ShortID returns the part of the fingerprint rpm uses in key names
func (k KeyInfo) ShortID() string {
	return ShortID(k.Fingerprint)
}

// ReadKeyFile reads the OpenPGP public keys stored in path, armored or binary
func ReadKeyFile(path string) ([]KeyInfo, error) {
	if path == "" {
		return nil, fmt.Errorf("key path is empty")
	}

	keyFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	defer keyFile.Close()

	// Try to parse as armored key first
	entityList, err := openpgp.ReadArmoredKeyRing(keyFile)
	if err != nil {
		// Try as binary key
		if _, err := keyFile.Seek(0, 0); err != nil {
			return nil, fmt.Errorf("failed to rewind key file: %w", err)
		}
		entityList, err = openpgp.ReadKeyRing(keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
	}

	if len(entityList) == 0 {
		return nil, fmt.Errorf("no keys found in key file")
	}

	keys := make([]KeyInfo, 0, len(entityList))
	for _, entity := range entityList {
		info := KeyInfo{
			Fingerprint: strings.ToLower(fmt.Sprintf("%x", entity.PrimaryKey.Fingerprint)),
		}
		for name := range entity.Identities {
			info.UserIDs = append(info.UserIDs, name)
		}
		sort.Strings(info.UserIDs)
		keys = append(keys, info)
	}
	return keys, nil
}
