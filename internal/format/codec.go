package format

import (
	"fmt"
	"os"
	"strings"

	"barcache/internal/model"
)

// Codec reads and writes one partition file of bars.
// The cache loader depends only on this interface; the format is chosen at wiring time.
type Codec interface {
	Save(bars []model.Bar, path string) error
	Load(path string) ([]model.Bar, error)
	Extension() string
}

// Formats lists the supported codec names.
var Formats = []string{"csv", "json", "parquet"}

// NewCodec creates a Codec by format (csv, json, parquet).
// Returns nil if format not supported.
func NewCodec(format string) Codec {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv", "":
		return CSVCodec{}
	case "parquet":
		return ParquetCodec{}
	case "json":
		return JSONCodec{}
	default:
		return nil
	}
}

// MustCodec is like NewCodec but panics on an unsupported format.
func MustCodec(format string) Codec {
	c := NewCodec(format)
	if c == nil {
		panic(fmt.Sprintf("format: unsupported %q (use: %s)", format, strings.Join(Formats, ", ")))
	}
	return c
}

// replaceFile moves a fully written temp file over path.
// A crash mid-write leaves only the .tmp file, which never matches a partition name.
func replaceFile(tmp, path string, writeErr error) error {
	if writeErr != nil {
		os.Remove(tmp)
		return writeErr
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
