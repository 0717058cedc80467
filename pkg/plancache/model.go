package plancache

import "time"

// Entry is the client-local mirror of one qmgr_prepare_query result: the
// XASL id the server returned for a given SQL hash text and user, cached
// across client restarts so a reconnecting client can retry
// qmgr_execute_query with a remembered plan before falling back to a full
// prepare.
type Entry struct {
	ID uint `gorm:"primaryKey"`

	SQLHash  string `gorm:"uniqueIndex:idx_plan_identity;not null"`
	UserOID  string `gorm:"uniqueIndex:idx_plan_identity;not null"`
	XASLID   []byte `gorm:"not null"` // 16-byte XASL_ID, see spec.md's GLOSSARY
	PlanText string

	CreatedAt  time.Time
	LastUsedAt time.Time
	HitCount   int64
}

// TableName pins the table name so it survives a struct rename.
func (Entry) TableName() string {
	return "plan_cache_entries"
}
