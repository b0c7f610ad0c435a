package trace

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// ReadFile loads an access sequence from the file at path.
// See [Read] for the format.
func ReadFile(path string) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open trace")
	}
	defer f.Close()
	keys, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read trace %s", path)
	}
	return keys, nil
}

// Read parses one key per line.
// Decimal and 0x-prefixed hexadecimal tokens that fit
// in 32 bits are used as-is; any other token is hashed.
// Blank lines and lines starting with '#' are skipped.
func Read(r io.Reader) ([]uint32, error) {
	var (
		keys    []uint32
		scanner = bufio.NewScanner(r)
		line    int
	)
	for scanner.Scan() {
		line++
		token := strings.TrimSpace(scanner.Text())
		if token == "" || strings.HasPrefix(token, "#") {
			continue
		}
		if strings.ContainsAny(token, " \t") {
			return nil, errors.Errorf("line %d: expected one key, got %q", line, token)
		}
		keys = append(keys, Key(token))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "line %d", line)
	}
	if len(keys) == 0 {
		return nil, errors.New("trace contains no keys")
	}
	return keys, nil
}

// Key converts a trace token into a cache key.
func Key(token string) uint32 {
	if key, err := strconv.ParseUint(token, 0, 32); err == nil {
		return uint32(key)
	}
	return uint32(xxhash.Sum64String(token))
}
