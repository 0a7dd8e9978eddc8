package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hanzi/internal/domain"
)

// LoadFile reads a dataset, choosing the format by file extension.
func LoadFile(path string) (domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return DecodeJSON(f)
	case ".xlsx":
		return DecodeXLSX(f)
	default:
		return domain.Dataset{}, fmt.Errorf("unsupported dataset format %q", ext)
	}
}
