// Package audit records one event per generation backend call. Events carry
// timing and outcome only; document text, questions and answers are never
// stored.
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/talqs/talqs/backend/go-services/pkg/logger"
)

// Collection is the Mongo collection events are written to.
const Collection = "generation_events"

// Event is the persisted representation of a generation call.
type Event struct {
	Task      string    `bson:"task" json:"task"`
	Backend   string    `bson:"backend" json:"backend"`
	Reason    string    `bson:"reason,omitempty" json:"reason,omitempty"`
	LatencyMs int64     `bson:"latencyMs" json:"latencyMs"`
	RequestID string    `bson:"requestId,omitempty" json:"requestId,omitempty"`
	At        time.Time `bson:"at" json:"at"`
}

// Recorder receives generation events. Implementations must not block the
// caller for long and must not return errors to it.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}

// Func adapts a function to a Recorder.
type Func func(ctx context.Context, ev Event)

func (f Func) Record(ctx context.Context, ev Event) { f(ctx, ev) }

type requestIDKey struct{}

// WithRequestID attaches a request id that Record copies into events.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// MongoRecorder inserts events into a Mongo collection.
type MongoRecorder struct {
	client  *mongo.Client
	col     *mongo.Collection
	timeout time.Duration
}

// NewMongoRecorderFromClient wraps an existing client.
func NewMongoRecorderFromClient(client *mongo.Client, databaseName string, timeout time.Duration) *MongoRecorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MongoRecorder{
		client:  client,
		col:     client.Database(databaseName).Collection(Collection),
		timeout: timeout,
	}
}

func (m *MongoRecorder) Record(ctx context.Context, ev Event) {
	if ev.RequestID == "" {
		ev.RequestID = RequestID(ctx)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()
	if _, err := m.col.InsertOne(ctx, toDoc(ev)); err != nil {
		logger.Warnf("audit: insert generation event failed: %v", err)
	}
}

// Ping reports whether the backing Mongo deployment is reachable.
func (m *MongoRecorder) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (m *MongoRecorder) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func toDoc(ev Event) bson.M {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	doc := bson.M{
		"task":      ev.Task,
		"backend":   ev.Backend,
		"latencyMs": ev.LatencyMs,
		"at":        ev.At,
	}
	if ev.Reason != "" {
		doc["reason"] = ev.Reason
	}
	if ev.RequestID != "" {
		doc["requestId"] = ev.RequestID
	}
	return doc
}
