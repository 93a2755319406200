package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

// EncodeBackup serialises the whole document as indented JSON
func EncodeBackup(doc *model.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeBackup parses a backup. Both the "members" and "taken" collections
// must be present and be arrays, otherwise a *BackupFormatError is returned.
func DecodeBackup(data []byte) (*model.Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &BackupFormatError{Reason: "not a JSON object", Err: err}
	}

	for _, key := range []string{"members", "taken"} {
		raw, ok := top[key]
		if !ok {
			return nil, &BackupFormatError{Reason: fmt.Sprintf("missing %q", key)}
		}
		if !isArray(raw) {
			return nil, &BackupFormatError{Reason: fmt.Sprintf("%q is not an array", key)}
		}
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &BackupFormatError{Reason: "malformed document", Err: err}
	}
	doc.Normalize()
	return &doc, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
