// Package notifier reacts to constraint-request document changes: a creation
// fans a push notification out to the team's admins, and a status change into
// approved/rejected notifies the requester. No failure here ever propagates to
// the event dispatcher; everything is logged and contained so the platform
// never re-delivers an event and duplicates notifications.
package notifier

import (
	"context"

	log "shiftserver/cloudlog"
	"shiftserver/collections"
	"shiftserver/push"
	"shiftserver/storage"
)

// placeholderName stands in when the requester's staff document is missing.
const placeholderName = "スタッフ"

type datastore interface {
	StaffByID(ctx context.Context, teamID, staffID string) (*collections.StaffEntry, bool, error)
	StaffIDByEmail(ctx context.Context, teamID, email string) (string, bool, error)
	TeamAdmins(ctx context.Context, teamID string) ([]storage.TeamUser, error)
	TeamUsers(ctx context.Context, teamID string) ([]storage.TeamUser, error)
	ClearPushToken(ctx context.Context, userID string) error
}

type sender interface {
	Send(ctx context.Context, n *push.Notification) error
}

// RequestEvent is one constraint-request document change. Before is nil for a
// creation; both field sets are present for an update.
type RequestEvent struct {
	TeamID    string
	RequestID string
	Before    *collections.ConstraintRequestFields
	After     *collections.ConstraintRequestFields
}

// Notifier implements the two reactive notification handlers.
type Notifier struct {
	db     datastore
	sender sender
}

// New creates a Notifier around the given collaborators.
func New(db datastore, sender sender) *Notifier {
	return &Notifier{db: db, sender: sender}
}

// RequestCreated notifies every eligible admin of the request's team that a
// new constraint request was submitted. Admins who opted out of the
// requestCreated kind or have no registered token are skipped. A send that
// fails because the token is no longer registered prunes the stored token.
func (n *Notifier) RequestCreated(ctx context.Context, ev *RequestEvent) {
	if ev == nil || ev.After == nil {
		log.Print("request created event without payload")
		return
	}
	fields := ev.After

	staffName := placeholderName
	staff, exists, err := n.db.StaffByID(ctx, ev.TeamID, fields.StaffID)
	if err != nil {
		log.Printf("staff lookup failed for %s: %v", fields.StaffID, err)
	} else if exists {
		staffName = staff.Name
	}

	title, body, ok := createdTemplate(fields.RequestType, fields.IsDelete, staffName)
	if !ok {
		log.Printf("unknown request type %q, skipping notification", fields.RequestType)
		return
	}

	admins, err := n.db.TeamAdmins(ctx, ev.TeamID)
	if err != nil {
		log.Printf("admin query failed for team %s: %v", ev.TeamID, err)
		return
	}
	if len(admins) == 0 {
		log.Printf("team %s has no admins to notify", ev.TeamID)
		return
	}

	data := n.payloadData(typeRequestCreated, ev)

	// Every send runs as its own operation; one failing delivery never holds
	// up or cancels the others.
	done := make(chan struct{}, len(admins))
	sends := 0
	for _, admin := range admins {
		if !admin.Entry.WantsNotification(collections.KindRequestCreated) {
			continue
		}
		if admin.Entry.FCMToken == "" {
			continue
		}
		sends++
		go func(admin storage.TeamUser) {
			n.send(ctx, admin, &push.Notification{
				Token: admin.Entry.FCMToken,
				Title: title,
				Body:  body,
				Data:  data,
			})
			done <- struct{}{}
		}(admin)
	}
	for i := 0; i < sends; i++ {
		<-done
	}
}

// RequestStatusChanged notifies the requester when their constraint request
// transitions into approved or rejected. Any other transition, including an
// unchanged status, is a no-op.
func (n *Notifier) RequestStatusChanged(ctx context.Context, ev *RequestEvent) {
	if ev == nil || ev.Before == nil || ev.After == nil {
		log.Print("request updated event without payload")
		return
	}
	if ev.Before.Status == ev.After.Status {
		return
	}
	status := ev.After.Status
	if status != collections.StatusApproved && status != collections.StatusRejected {
		return
	}

	target, found := n.resolveRequester(ctx, ev)
	if !found {
		log.Printf("no linked user for request %s staff %s", ev.RequestID, ev.After.StaffID)
		return
	}

	kind := collections.KindRequestApproved
	payloadType := typeRequestApproved
	if status == collections.StatusRejected {
		kind = collections.KindRequestRejected
		payloadType = typeRequestRejected
	}
	if !target.Entry.WantsNotification(kind) {
		return
	}
	if target.Entry.FCMToken == "" {
		return
	}

	title, body, ok := statusTemplate(status, ev.After.RequestType, ev.After.IsDelete)
	if !ok {
		log.Printf("unknown request type %q, skipping notification", ev.After.RequestType)
		return
	}

	n.send(ctx, target, &push.Notification{
		Token: target.Entry.FCMToken,
		Title: title,
		Body:  body,
		Data:  n.payloadData(payloadType, ev),
	})
}

// resolveRequester finds the user linked to the request's staff member by
// cross-referencing emails between the team's users and its staff collection,
// stopping at the first match.
func (n *Notifier) resolveRequester(ctx context.Context, ev *RequestEvent) (storage.TeamUser, bool) {
	users, err := n.db.TeamUsers(ctx, ev.TeamID)
	if err != nil {
		log.Printf("user query failed for team %s: %v", ev.TeamID, err)
		return storage.TeamUser{}, false
	}
	for _, user := range users {
		if user.Entry.Email == "" {
			continue
		}
		staffID, exists, err := n.db.StaffIDByEmail(ctx, ev.TeamID, user.Entry.Email)
		if err != nil {
			log.Printf("staff lookup failed for %s: %v", user.Entry.Email, err)
			continue
		}
		if exists && staffID == ev.After.StaffID {
			return user, true
		}
	}
	return storage.TeamUser{}, false
}

// send delivers one notification, pruning the recipient's token if the
// provider reports it unregistered. Prune failures are logged, nothing more.
func (n *Notifier) send(ctx context.Context, recipient storage.TeamUser, notification *push.Notification) {
	err := n.sender.Send(ctx, notification)
	switch err {
	case nil:
	case push.ErrTokenNotRegistered:
		log.Printf("token no longer registered for user %s, pruning", recipient.ID)
		if err := n.db.ClearPushToken(ctx, recipient.ID); err != nil {
			log.Printf("token prune failed for user %s: %v", recipient.ID, err)
		}
	default:
		log.Printf("push delivery failed for user %s: %v", recipient.ID, err)
	}
}

func (n *Notifier) payloadData(payloadType string, ev *RequestEvent) map[string]string {
	return map[string]string{
		"type":        payloadType,
		"teamId":      ev.TeamID,
		"requestId":   ev.RequestID,
		"staffId":     ev.After.StaffID,
		"requestType": ev.After.RequestType,
	}
}
