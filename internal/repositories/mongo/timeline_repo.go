package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pollyhq/pollycoach/internal/models"
)

type TimelineRepository interface {
	Insert(ctx context.Context, arc *models.TimelineArchive) error
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.TimelineArchive, error)
}

type timelineRepo struct {
	col *mongo.Collection
}

func NewTimelineRepo(db *mongo.Database) TimelineRepository {
	return &timelineRepo{col: db.Collection("emotion_timelines")}
}

func (r *timelineRepo) Insert(ctx context.Context, arc *models.TimelineArchive) error {
	if arc.RecordedAt.IsZero() {
		arc.RecordedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, arc)
	return err
}

func (r *timelineRepo) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.TimelineArchive, error) {
	if limit <= 0 {
		limit = 20
	}

	cur, err := r.col.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().
			SetSort(bson.D{{Key: "recorded_at", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TimelineArchive
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
