package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
)

// EncodeSave renders a snapshot in the save-file format every store uses.
func EncodeSave(data model.SaveData) ([]byte, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	return b, nil
}

// DecodeSave parses a stored snapshot with the same rules as an imported
// save file.
func DecodeSave(b []byte) (model.SaveData, error) {
	return model.DecodeSaveData(bytes.NewReader(b))
}

// InfoOf summarizes a snapshot for listings.
func InfoOf(handle string, data model.SaveData) SaveInfo {
	return SaveInfo{Handle: handle, LastModified: data.LastModified, TotalEvents: len(data.Events)}
}
