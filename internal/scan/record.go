package scan

import "time"

// Record is one classified scan result. All fields are fixed at creation;
// the store never rewrites a record in place, it only inserts and removes.
type Record struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Category  Category  `json:"category"`
}
