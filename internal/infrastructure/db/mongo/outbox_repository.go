package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

// maxPublishAttempts caps retries before an event is parked as failed and
// left for operator inspection.
const maxPublishAttempts = 10

// OutboxRepository implements ports.OutboxRepository on the outbox_events
// collection. Events are inserted by OrderRepository.AttachDecision inside
// the decision transaction; this repository only drains and marks them.
type OutboxRepository struct {
	col *mongo.Collection
}

func NewOutboxRepository(db *mongo.Database) *OutboxRepository {
	return &OutboxRepository{col: db.Collection(collectionOutbox)}
}

// FetchPending returns up to limit pending events, oldest first.
func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"status": string(domain.OutboxPending)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []domain.OutboxEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// MarkPublished flips the event to published and stamps the publish time.
func (r *OutboxRepository) MarkPublished(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$set": bson.M{"status": string(domain.OutboxPublished), "published_at": now}},
	)
	return err
}

// MarkFailed records a failed attempt; after maxPublishAttempts the event is
// parked as failed instead of being retried forever.
func (r *OutboxRepository) MarkFailed(ctx context.Context, eventID string, cause string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$inc": bson.M{"attempts": 1}, "$set": bson.M{"last_error": cause}},
	)
	if err != nil {
		return err
	}

	_, err = r.col.UpdateOne(ctx,
		bson.M{"_id": eventID, "attempts": bson.M{"$gte": maxPublishAttempts}},
		bson.M{"$set": bson.M{"status": string(domain.OutboxFailed)}},
	)
	return err
}

// CountPending reports the current outbox backlog.
func (r *OutboxRepository) CountPending(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"status": string(domain.OutboxPending)})
}

// EnsureIndexes creates the indexes the relay's drain query relies on.
func (r *OutboxRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "order_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
