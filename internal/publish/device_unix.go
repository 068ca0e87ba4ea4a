//go:build unix

package publish

import (
	"fmt"
	"os"
	"syscall"
)

func deviceOf(path string) (uint64, bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, false, err
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false, fmt.Errorf("no device information for %s", path)
	}
	return uint64(st.Dev), true, nil //nolint:unconvert // Dev is not uint64 on every platform
}
