package models

import (
	"time"
)

const (
	AUDIT_TOKEN_GRANT = "token_grant"
	AUDIT_TOKEN_RESET = "token_reset"
)

// AuditLog records admin-initiated token operations. Writes are best-effort:
// a failed append never rolls back the balance change it describes.
type AuditLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ActorSubjectID string    `gorm:"type:varchar(64);index" json:"actor_subject_id"`
	ActorEmail     string    `gorm:"type:varchar(200)" json:"actor_email"`
	Action         string    `gorm:"type:varchar(50);index" json:"action"`
	SubjectID      string    `gorm:"type:varchar(64);index" json:"subject_id"`
	SubjectType    string    `gorm:"type:varchar(20)" json:"subject_type"`
	Metadata       string    `gorm:"type:json" json:"metadata"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
