package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DigestRecord tracks one daily digest attempt. Exactly one record may
// exist per calendar date; its presence, successful or not, is what
// blocks a same-day resend.
type DigestRecord struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	DigestDate    time.Time      `json:"digest_date" db:"digest_date"`
	SentAt        time.Time      `json:"sent_at" db:"sent_at"`
	LowStockCount int            `json:"low_stock_count" db:"low_stock_count"`
	Recipients    pq.StringArray `json:"recipients" db:"recipients"`
	Succeeded     bool           `json:"succeeded" db:"succeeded"`
	ErrorDetail   string         `json:"error_detail,omitempty" db:"error_detail"`
}

// DigestDateFormat is the canonical key for daily digest uniqueness.
const DigestDateFormat = "2006-01-02"
