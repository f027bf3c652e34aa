package conversation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a transcript encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatForPath picks the transcript format from a file extension.
// Anything that is not .json is treated as YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// DecodeSnapshot decodes a snapshot and stamps item revisions.
func DecodeSnapshot(data []byte, format Format) (*Snapshot, error) {
	var snap Snapshot
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &snap)
	default:
		err = yaml.Unmarshal(data, &snap)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	Stamp(snap.Items)
	return &snap, nil
}

// EncodeSnapshot encodes a snapshot in the given format.
func EncodeSnapshot(snap *Snapshot, format Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(snap, "", "  ")
	default:
		data, err = yaml.Marshal(snap)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// LoadSnapshot reads and decodes a transcript file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return DecodeSnapshot(data, FormatForPath(path))
}
