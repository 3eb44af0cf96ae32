package models

import "time"

// Audit actions recorded for deadline changes.
const (
	AuditActionAccommodationExtension = "ACCOMMODATION_EXTENSION"
	AuditActionFreeExtension          = "FREE_EXTENSION"
	AuditActionRecompute              = "STUDENT_RECOMPUTE"
	AuditActionCacheInvalidate        = "CACHE_INVALIDATE"
)

// AuditLog records who changed a student's deadlines or triggered administrative work.
// Details holds a JSON object describing the request.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	RequestID  string    `db:"request_id" json:"request_id,omitempty"`
	Details    []byte    `db:"details" json:"details,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
