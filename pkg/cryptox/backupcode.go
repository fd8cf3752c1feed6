package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// backupCodeAlphabet avoids characters users confuse when typing a code by
// hand: no 0/O, 1/I/L.
const backupCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// backupCodeLength is the number of alphabet characters per code. The code
// is rendered as two dash-separated groups of five.
const backupCodeLength = 10

// GenerateBackupCode creates one human-enterable recovery code of the form
// XXXXX-XXXXX from the unambiguous alphabet.
func GenerateBackupCode() (string, error) {
	chars := make([]byte, backupCodeLength)
	for i := range chars {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(backupCodeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate backup code: %w", err)
		}
		chars[i] = backupCodeAlphabet[n.Int64()]
	}

	half := backupCodeLength / 2
	return string(chars[:half]) + "-" + string(chars[half:]), nil
}

// GenerateBackupCodes creates count recovery codes. The plaintext codes are
// only ever returned here; persist fingerprints, never the codes.
func GenerateBackupCodes(count int) ([]string, error) {
	codes := make([]string, count)
	for i := range codes {
		code, err := GenerateBackupCode()
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}
	return codes, nil
}

// NormalizeBackupCode maps user input onto the canonical stored form:
// uppercase, surrounding whitespace dropped.
func NormalizeBackupCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
