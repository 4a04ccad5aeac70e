package routing

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
)

// Fingerprint computes the 128-bit content digest used for duplicate
// detection and collision suffixes.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()

	_, err = io.Copy(h, f)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
