package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrOutputPathInvalid means the output directory could not be created or
// written to.
var ErrOutputPathInvalid = errors.New("output path invalid")

// WriteCSV writes the header and records to <dir>/<name>. The directory is
// created if missing. Data lands in a temp file first and is renamed into
// place, so a failed run never leaves a partial CSV behind.
func WriteCSV(dir, name string, header []string, records [][]string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutputPathInvalid, err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.NewString()))
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutputPathInvalid, err)
	}

	bw := bufio.NewWriter(f)
	w := csv.NewWriter(bw)

	writeAll := func() error {
		if err := w.Write(header); err != nil {
			return err
		}
		for _, rec := range records {
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
		return bw.Flush()
	}

	if err := writeAll(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %v", ErrOutputPathInvalid, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %v", ErrOutputPathInvalid, err)
	}

	final := filepath.Join(dir, name)
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %v", ErrOutputPathInvalid, err)
	}
	return final, nil
}
