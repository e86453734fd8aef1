// Package storage wraps the Firestore collections used by the scheduling
// backend. A Store is created once per process and passed down to the
// handlers; there is no package-level client.
package storage

import (
	"context"

	log "shiftserver/cloudlog"
	"shiftserver/collections"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// maxBatchOps is Firestore's limit on writes per atomic batch. Deletes over
// this size are split into sequential chunks; any chunk failure fails the
// whole logical purge.
const maxBatchOps = 500

// TeamUser pairs a user document ID with its entry data. The document ID
// doubles as the identity-provider account ID.
type TeamUser struct {
	ID    string
	Entry collections.UserEntry
}

// Store represents the Firestore database and contains functions for
// interacting with it.
type Store struct {
	client *firestore.Client
}

// New creates a Store backed by a new Firestore client for the given project.
func New(ctx context.Context, projectID string) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &Store{client: client}, nil
}

// NewWithClient creates a Store around an existing client, e.g. an emulator
// client in tests.
func NewWithClient(client *firestore.Client) *Store {
	return &Store{client: client}
}

// Close performs cleanup for closing storage connections.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) users() *firestore.CollectionRef {
	return s.client.Collection(collections.Users)
}

func (s *Store) teamDoc(teamID string) *firestore.DocumentRef {
	return s.client.Collection(collections.Teams).Doc(teamID)
}

// UserByID fetches the user document with the given ID. It silences a
// codes.NotFound error because that info is reflected in the bool return.
func (s *Store) UserByID(ctx context.Context, userID string) (*collections.UserEntry, bool, error) {
	snapshot, err := s.users().Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	entry := &collections.UserEntry{}
	if err := snapshot.DataTo(entry); err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// TeamUsers gives every user document whose teamId field matches teamID.
func (s *Store) TeamUsers(ctx context.Context, teamID string) ([]TeamUser, error) {
	return s.queryUsers(ctx, s.users().Where(collections.TeamIDKey, "==", teamID).Documents(ctx))
}

// TeamAdmins gives every user of the team with role "admin".
func (s *Store) TeamAdmins(ctx context.Context, teamID string) ([]TeamUser, error) {
	iter := s.users().
		Where(collections.TeamIDKey, "==", teamID).
		Where(collections.RoleKey, "==", collections.RoleAdmin).
		Documents(ctx)
	return s.queryUsers(ctx, iter)
}

func (s *Store) queryUsers(ctx context.Context, iter *firestore.DocumentIterator) ([]TeamUser, error) {
	users := []TeamUser{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		entry := collections.UserEntry{}
		if err := doc.DataTo(&entry); err != nil {
			log.Printf("skipping malformed user document %s: %v", doc.Ref.ID, err)
			continue
		}
		users = append(users, TeamUser{ID: doc.Ref.ID, Entry: entry})
	}
	return users, nil
}

// StaffByID fetches the staff document with the given ID within the team.
// A missing document is reported through the bool, not the error.
func (s *Store) StaffByID(ctx context.Context, teamID, staffID string) (*collections.StaffEntry, bool, error) {
	snapshot, err := s.teamDoc(teamID).Collection(collections.StaffCollection).Doc(staffID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	entry := &collections.StaffEntry{}
	if err := snapshot.DataTo(entry); err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// StaffIDByEmail looks up the team's staff document whose email field matches,
// giving its document ID. Only the first match is considered.
func (s *Store) StaffIDByEmail(ctx context.Context, teamID, email string) (string, bool, error) {
	iter := s.teamDoc(teamID).
		Collection(collections.StaffCollection).
		Where(collections.EmailKey, "==", email).
		Documents(ctx)
	doc, err := iter.Next()
	if err == iterator.Done {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return doc.Ref.ID, true, nil
}

// DeleteTeamDoc removes the team's root document. Teardown calls this before
// any subcollection purge so that collaborating write paths observing the team
// document can't reactively recreate default state mid-deletion.
func (s *Store) DeleteTeamDoc(ctx context.Context, teamID string) error {
	_, err := s.teamDoc(teamID).Delete(ctx)
	return err
}

// PurgeSubcollection deletes every document in the named subcollection of the
// team. An already-empty subcollection is a no-op, not an error.
func (s *Store) PurgeSubcollection(ctx context.Context, teamID, subcollection string) error {
	docs, err := s.teamDoc(teamID).Collection(subcollection).Documents(ctx).GetAll()
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		log.Printf("subcollection already empty: %s", subcollection)
		return nil
	}
	refs := make([]*firestore.DocumentRef, 0, len(docs))
	for _, doc := range docs {
		refs = append(refs, doc.Ref)
	}
	if err := s.deleteRefs(ctx, refs); err != nil {
		return err
	}
	log.Printf("subcollection purged: %s (%d docs)", subcollection, len(docs))
	return nil
}

// DeleteUserDocs removes the user documents with the given IDs as chunked
// atomic batches.
func (s *Store) DeleteUserDocs(ctx context.Context, userIDs []string) error {
	refs := make([]*firestore.DocumentRef, 0, len(userIDs))
	for _, id := range userIDs {
		refs = append(refs, s.users().Doc(id))
	}
	return s.deleteRefs(ctx, refs)
}

func (s *Store) deleteRefs(ctx context.Context, refs []*firestore.DocumentRef) error {
	for _, chunk := range chunkRefs(refs, maxBatchOps) {
		batch := s.client.Batch()
		for _, ref := range chunk {
			batch.Delete(ref)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}

// chunkRefs splits refs into slices of at most size elements.
func chunkRefs(refs []*firestore.DocumentRef, size int) [][]*firestore.DocumentRef {
	chunks := [][]*firestore.DocumentRef{}
	for len(refs) > size {
		chunks = append(chunks, refs[:size])
		refs = refs[size:]
	}
	if len(refs) > 0 {
		chunks = append(chunks, refs)
	}
	return chunks
}

// ClearPushToken removes the stored delivery token from the user document.
// Called when a send fails because the token is no longer registered.
func (s *Store) ClearPushToken(ctx context.Context, userID string) error {
	_, err := s.users().Doc(userID).Update(ctx, []firestore.Update{
		{Path: collections.FCMTokenKey, Value: firestore.Delete},
	})
	return err
}
