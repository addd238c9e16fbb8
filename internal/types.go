package internal

import "time"

type SummaryRequest struct {
	ID            string    `json:"id"`
	DocumentCount int       `json:"document_count"`
	DocHash       string    `json:"doc_hash"`
	Language      string    `json:"language"`
	Timestamp     time.Time `json:"timestamp"`
}
