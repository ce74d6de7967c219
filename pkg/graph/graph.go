package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/topoview/pkg/errors"
)

// =============================================================================
// Dataset Formats
// =============================================================================

// Format identifies a dataset encoding.
type Format string

// Supported dataset encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the dataset encoding from a file extension.
// Unknown extensions default to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// =============================================================================
// Dataset Serialization API
// =============================================================================

// MarshalDataset encodes a dataset as pretty-printed JSON.
func MarshalDataset(d *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDataset(&buf, d, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDataset writes a dataset to w in the given format.
func WriteDataset(w io.Writer, d *Dataset, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(d); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown dataset format: %s", format)
	}
	return nil
}

// WriteDatasetFile writes a dataset to path, inferring the format from the
// extension. The file is created with 0644 permissions.
func WriteDatasetFile(d *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDataset(f, d, FormatFromPath(path))
}

// ReadDataset decodes a dataset from r in the given format.
// The dataset is not normalized; call [Dataset.Normalize] for that.
func ReadDataset(r io.Reader, format Format) (*Dataset, error) {
	var d Dataset
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode json dataset")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml dataset")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode toml dataset")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown dataset format: %s", format)
	}
	return &d, nil
}

// ReadDatasetFile reads a dataset from path, inferring the format from the
// extension.
func ReadDatasetFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDataset(f, FormatFromPath(path))
}

// LoadFile reads and normalizes a dataset file in one step.
func LoadFile(path string) (*Dataset, *Graph, error) {
	d, err := ReadDatasetFile(path)
	if err != nil {
		return nil, nil, err
	}
	g, err := d.Normalize()
	if err != nil {
		return nil, nil, fmt.Errorf("normalize %s: %w", path, err)
	}
	return d, g, nil
}
