// Package events receives constraint-request document change events over
// Pub/Sub and dispatches them to the notifiers. Events are always acked, even
// when a handler logs a failure: redelivery would only duplicate
// notifications, and the notifiers contain their own errors.
package events

import (
	"context"
	"encoding/json"

	log "shiftserver/cloudlog"
	"shiftserver/collections"
	"shiftserver/notifier"

	"cloud.google.com/go/pubsub"
)

const (
	eventTypeCreated = "created"
	eventTypeUpdated = "updated"
)

// changeMessage is the wire shape of one document change event, published for
// documents at teams/{teamId}/constraint_requests/{requestId}.
type changeMessage struct {
	EventType string                               `json:"eventType"`
	TeamID    string                               `json:"teamId"`
	RequestID string                               `json:"requestId"`
	Before    *collections.ConstraintRequestFields `json:"before,omitempty"`
	After     *collections.ConstraintRequestFields `json:"after,omitempty"`
}

type requestHandlers interface {
	RequestCreated(ctx context.Context, ev *notifier.RequestEvent)
	RequestStatusChanged(ctx context.Context, ev *notifier.RequestEvent)
}

// Listener consumes a Pub/Sub subscription of document change events.
type Listener struct {
	subscription *pubsub.Subscription
	handlers     requestHandlers
}

// NewListener creates a Listener for the named subscription.
func NewListener(ctx context.Context, projectID, subscriptionID string, handlers requestHandlers) (*Listener, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &Listener{
		subscription: client.Subscription(subscriptionID),
		handlers:     handlers,
	}, nil
}

// Listen blocks receiving events until ctx is cancelled.
func (l *Listener) Listen(ctx context.Context) error {
	return l.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		l.handle(ctx, msg.Data)
		msg.Ack()
	})
}

// handle decodes and dispatches one event payload.
func (l *Listener) handle(ctx context.Context, data []byte) {
	change := &changeMessage{}
	if err := json.Unmarshal(data, change); err != nil {
		log.Printf("dropping undecodable change event: %v", err)
		return
	}
	ev := &notifier.RequestEvent{
		TeamID:    change.TeamID,
		RequestID: change.RequestID,
		Before:    change.Before,
		After:     change.After,
	}
	switch change.EventType {
	case eventTypeCreated:
		l.handlers.RequestCreated(ctx, ev)
	case eventTypeUpdated:
		l.handlers.RequestStatusChanged(ctx, ev)
	default:
		log.Printf("dropping change event with unknown type %q", change.EventType)
	}
}
