package models

import (
	"time"
)

// TokenBalance is the single balance row per subject. Rows are created
// implicitly by the first grant or purchase attempt and never deleted.
// Balance is kept non-negative by the conditional debit in the ledger
// repository, not by application-side checks.
type TokenBalance struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SubjectID   string `gorm:"type:varchar(64);uniqueIndex:idx_token_subject;not null" json:"subject_id"`
	SubjectType string `gorm:"type:varchar(20);uniqueIndex:idx_token_subject;not null" json:"subject_type"`
	Balance     int64  `gorm:"not null;default:0" json:"balance"`

	// LastDailyRewardAt gates the daily login reward to once per UTC day.
	LastDailyRewardAt *time.Time `gorm:"type:timestamp;default:null" json:"last_daily_reward_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
