package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/redline/pkg/errors"
)

// Marshal converts a batch to indented JSON.
func Marshal(b *Batch) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(b, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a batch from JSON.
func Unmarshal(data []byte) (*Batch, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes a batch as JSON to w.
func Write(b *Batch, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a JSON batch from r.
func Read(r io.Reader) (*Batch, error) {
	var b Batch
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode batch")
	}
	return &b, nil
}

// WriteFile writes a batch to a JSON file.
func WriteFile(b *Batch, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return writeClose(b, f)
}

// writeClose writes b to w and closes it, reporting the first error.
func writeClose(b *Batch, w io.WriteCloser) error {
	if err := Write(b, w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// ReadFile reads a batch from a JSON file.
func ReadFile(path string) (*Batch, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "batch file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
