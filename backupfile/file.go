// Package backupfile reads and writes backup documents as files and runs the
// launcher's automatic backup.
package backupfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/CreativeUnicorns/launcherprefs"
)

// Encode writes doc as UTF-8 JSON indented with two spaces.
func Encode(w io.Writer, doc *launcherprefs.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Decode parses a backup document.
func Decode(r io.Reader) (*launcherprefs.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	doc := launcherprefs.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Write replaces the file at path with doc. The file is written to a
// temporary sibling first and renamed into place, so a failed write leaves
// the previous backup intact. Failures wrap launcherprefs.ErrStorageUnavailable.
func Write(path string, doc *launcherprefs.Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: create backup file: %w", launcherprefs.ErrStorageUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write backup file: %w", launcherprefs.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: write backup file: %w", launcherprefs.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: replace backup file: %w", launcherprefs.ErrStorageUnavailable, err)
	}
	return nil
}

// Read loads the backup document at path.
func Read(path string) (*launcherprefs.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open backup file: %w", launcherprefs.ErrStorageUnavailable, err)
	}
	defer f.Close()
	return Decode(f)
}
