package models

import "time"

// SequenceCounter is the last issued number per (entity, organization).
type SequenceCounter struct {
	Entity         string    `db:"entity" json:"entity"`
	OrganizationID string    `db:"organization_id" json:"organizationId"`
	LastID         int64     `db:"last_id" json:"lastId"`
	Prefix         string    `db:"prefix" json:"prefix"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
