package git

import (
	"io"
	"os"
)

// digestReadCeiling caps how much of a dirty file the status digest
// reads. Content beyond the ceiling cannot change symbol extraction for
// files the indexer would skip anyway.
const digestReadCeiling = 4 * 1024 * 1024

func readLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, digestReadCeiling))
}
