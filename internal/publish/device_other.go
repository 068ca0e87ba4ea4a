//go:build !unix

package publish

import "os"

// deviceOf cannot tell devices apart here; the rename itself reports cross-device moves.
func deviceOf(path string) (uint64, bool, error) {
	_, err := os.Stat(path)
	return 0, false, err
}
