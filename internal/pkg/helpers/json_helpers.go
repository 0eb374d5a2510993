package helpers

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// EncodeStringList serializes a list column. A nil list is stored as "[]".
func EncodeStringList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeStringList parses a JSON list column. Malformed content is logged as a
// warning and yields an empty list so one broken row never fails a listing.
func DecodeStringList(raw string, column, recordID string, lgr zerolog.Logger) []string {
	if raw == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		lgr.Warn().Err(err).
			Str("column", column).
			Str("recordId", recordID).
			Msg("Malformed JSON list in stored record, using empty list")
		return []string{}
	}
	if values == nil {
		return []string{}
	}
	return values
}
