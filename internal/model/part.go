package model

import (
	"time"

	"github.com/google/uuid"
)

// Part is a spare-part inventory record.
type Part struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Threshold int       `json:"threshold" db:"threshold"`
	Supplier  string    `json:"supplier,omitempty" db:"supplier"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsLow reports whether the part is at or below its reorder threshold.
// The daily digest uses a strict comparison instead; the two call sites
// intentionally differ.
func (p *Part) IsLow() bool {
	return p.Quantity <= p.Threshold
}

// PartStats summarizes the inventory for dashboards.
type PartStats struct {
	TotalParts  int `json:"total_parts"`
	LowStock    int `json:"low_stock"`
	WellStocked int `json:"well_stocked"`
}

// AdjustAction is a quantity adjustment operation.
type AdjustAction string

const (
	AdjustActionUse     AdjustAction = "use"
	AdjustActionRestock AdjustAction = "restock"
	AdjustActionSet     AdjustAction = "set"
)
