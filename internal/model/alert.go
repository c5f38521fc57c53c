package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type AlertStatus string

const (
	AlertStatusPending  AlertStatus = "pending"
	AlertStatusSent     AlertStatus = "sent"
	AlertStatusFailed   AlertStatus = "failed"
	AlertStatusResolved AlertStatus = "resolved"
)

// OpenAlertStatuses are the statuses of an alert that has not yet been
// resolved. At most one alert per part may carry one of these at a time.
var OpenAlertStatuses = []AlertStatus{AlertStatusPending, AlertStatusSent}

// Alert is one entry in the permanent low-stock alert log. Part fields
// are snapshotted at alert time so the history survives later edits and
// even deletion of the part itself.
type Alert struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	PartID        uuid.UUID      `json:"part_id" db:"part_id"`
	PartName      string         `json:"part_name" db:"part_name"`
	Quantity      int            `json:"quantity" db:"quantity"`
	Threshold     int            `json:"threshold" db:"threshold"`
	Supplier      string         `json:"supplier,omitempty" db:"supplier"`
	Status        AlertStatus    `json:"status" db:"status"`
	Recipients    pq.StringArray `json:"recipients" db:"recipients"`
	ErrorDetail   string         `json:"error_detail,omitempty" db:"error_detail"`
	ErrorCategory string         `json:"error_category,omitempty" db:"error_category"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	ResolvedAt    *time.Time     `json:"resolved_at,omitempty" db:"resolved_at"`
}

// IsOpen reports whether the alert still counts against the one-open-
// alert-per-part invariant.
func (a *Alert) IsOpen() bool {
	return a.Status == AlertStatusPending || a.Status == AlertStatusSent
}
