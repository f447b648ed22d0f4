package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/greenroute/fulfillment-engine/internal/core/domain"
)

const (
	collectionOrders = "orders"
	collectionOutbox = "outbox_events"
)

// errGuardFailed signals that the status-guarded update matched no document;
// it never leaves this package — it is resolved into a typed domain error.
var errGuardFailed = errors.New("status guard rejected update")

// OrderRepository persists orders and enforces the single-writer invariant:
// decision and failure writes are conditional on status=pending_fulfillment.
type OrderRepository struct {
	client *mongo.Client
	orders *mongo.Collection
	outbox *mongo.Collection
}

func NewOrderRepository(client *mongo.Client, db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		client: client,
		orders: db.Collection(collectionOrders),
		outbox: db.Collection(collectionOutbox),
	}
}

// Create inserts a new order document.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.orders.InsertOne(ctx, o)
	return err
}

// FindByID retrieves an order by its identifier.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var o domain.Order
	err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

// AttachDecision commits the decision, the status transition, and the outbox
// append in one session transaction. The order update is guarded on
// status=pending_fulfillment; a rejected guard resolves to the typed error
// matching the order's actual state.
func (r *OrderRepository) AttachDecision(ctx context.Context, orderID string, d domain.FulfillmentDecision, evt domain.OutboxEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"_id": orderID, "status": string(domain.StatusPendingFulfillment)}
		update := bson.M{
			"$set":  bson.M{"status": string(domain.StatusDecided), "decision": d, "failure_reason": ""},
			"$push": bson.M{"decision_history": d},
		}
		res, err := r.orders.UpdateOne(sc, filter, update)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, errGuardFailed
		}
		if _, err := r.outbox.InsertOne(sc, evt); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if errors.Is(err, errGuardFailed) {
		return r.resolveGuardFailure(ctx, orderID)
	}
	return err
}

// MarkFailed transitions a pending order to failed, under the same guard.
func (r *OrderRepository) MarkFailed(ctx context.Context, orderID string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": orderID, "status": string(domain.StatusPendingFulfillment)}
	update := bson.M{"$set": bson.M{"status": string(domain.StatusFailed), "failure_reason": reason}}

	res, err := r.orders.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.resolveGuardFailure(ctx, orderID)
	}
	return nil
}

// resolveGuardFailure translates a rejected conditional write into the typed
// error the caller expects: the order vanished, was already decided, or was
// concurrently moved to another state.
func (r *OrderRepository) resolveGuardFailure(ctx context.Context, orderID string) error {
	o, err := r.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	switch o.Status {
	case domain.StatusDecided, domain.StatusConfirmed:
		return domain.ErrAlreadyDecided
	default:
		return domain.ErrDecisionConflict
	}
}

// EnsureIndexes creates the indexes the order collection relies on.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	_, err := r.orders.Indexes().CreateMany(ctx, indexes)
	return err
}
