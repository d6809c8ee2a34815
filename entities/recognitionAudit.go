package entities

import (
	"time"

	"facevote.io/application/utils"
)

type AuditOperation string

const (
	AuditEnroll AuditOperation = "enroll"
	AuditVerify AuditOperation = "verify"
)

type BackendAudit struct {
	Backend    Backend `bson:"backend" json:"backend"`
	Encoded    bool    `bson:"encoded" json:"encoded"`
	Matched    bool    `bson:"matched" json:"matched"`
	IdentityID string  `bson:"identityID,omitempty" json:"identityID,omitempty"`
	Similarity float64 `bson:"similarity" json:"similarity"`
}

// RecognitionAudit records the outcome of one enroll or verify call. It never
// carries image bytes or embeddings.
type RecognitionAudit struct {
	ID         string         `bson:"_id" json:"id"`
	RequestID  string         `bson:"requestID" json:"requestID"`
	Operation  AuditOperation `bson:"operation" json:"operation"`
	Outcome    string         `bson:"outcome" json:"outcome"`
	IdentityID string         `bson:"identityID,omitempty" json:"identityID,omitempty"`
	VoteCount  int            `bson:"voteCount" json:"voteCount"`
	Total      int            `bson:"total" json:"total"`
	Backends   []BackendAudit `bson:"backends" json:"backends"`
	DurationMs int64          `bson:"durationMs" json:"durationMs"`
	Timestamp  time.Time      `bson:"timestamp" json:"timestamp"`
	CreatedAt  time.Time      `bson:"createdAt" json:"createdAt"`
}

func (r RecognitionAudit) ParseModel() any {
	if r.ID == "" {
		r.ID = utils.GenerateUULDString()
	}
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = now
	}
	return &r
}
