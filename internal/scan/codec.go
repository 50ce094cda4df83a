package scan

import (
	"encoding/json"
	"fmt"
	"time"
)

// persistedRecord is the wire form of a Record. Timestamp and category stay
// plain strings here so that one bad field invalidates only its own element,
// not the whole array.
type persistedRecord struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
}

// encodeRecords serializes the full record sequence, newest first, as a JSON
// array. Timestamps encode as RFC 3339 with nanoseconds, which round-trips
// losslessly through decodeRecords.
func encodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding records: %w", err)
	}
	return data, nil
}

// decodeRecords parses a persisted record array. Decoding is tolerant per
// element: a malformed element (bad JSON, missing id, unparseable timestamp)
// is skipped rather than discarding the rest of the collection. An element
// whose category tag is unrecognized keeps its data with CategoryUnknown.
// Duplicate contents keep only the first (newest) occurrence so the store's
// dedup invariant holds after load. Returns the surviving records and the
// number of skipped elements; the error is non-nil only when the array
// itself does not parse.
func decodeRecords(data []byte) ([]Record, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("parsing record array: %w", err)
	}

	var (
		records []Record
		skipped int
	)
	seen := make(map[string]bool, len(raw))

	for _, elem := range raw {
		var pr persistedRecord
		if err := json.Unmarshal(elem, &pr); err != nil {
			skipped++
			continue
		}
		if pr.ID == "" {
			skipped++
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, pr.Timestamp)
		if err != nil {
			skipped++
			continue
		}
		if seen[pr.Content] {
			skipped++
			continue
		}
		seen[pr.Content] = true

		records = append(records, Record{
			ID:        pr.ID,
			Content:   pr.Content,
			Timestamp: ts,
			Category:  ParseCategory(pr.Category),
		})
	}

	return records, skipped, nil
}
