package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pollyhq/pollycoach/internal/analysis"
)

// TimelineArchive stores the raw per-frame emotion timeline of one completed
// recording. Kept in Mongo with a TTL index; the durable summary lives in
// the Postgres practice record.
type TimelineArchive struct {
	ID         primitive.ObjectID            `bson:"_id,omitempty" json:"id"`
	SessionID  string                        `bson:"session_id" json:"session_id"`
	RecordedAt time.Time                     `bson:"recorded_at" json:"recorded_at"`
	Frames     []analysis.FrameEmotionResult `bson:"frames" json:"frames"`
	ExpiresAt  time.Time                     `bson:"expires_at" json:"expires_at"` // for TTL index
}
