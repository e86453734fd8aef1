package storage

import (
	"context"
	"os"
	"testing"

	"shiftserver/collections"
	testutils "shiftserver/testing"
)

// emulatorStore gives a Store backed by the local Firestore emulator, skipping
// the test when no emulator is reachable.
func emulatorStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("requires a local Firestore emulator")
	}
	return NewWithClient(testutils.NewFirestoreTestClient(context.Background()))
}

func seedUser(t *testing.T, store *Store, userID string, entry collections.UserEntry) {
	t.Helper()
	_, err := store.client.Collection(collections.Users).Doc(userID).Set(context.Background(), entry)
	if err != nil {
		t.Fatalf("seeding user %s failed: %v", userID, err)
	}
}

func TestTeamUsersAndAdmins(t *testing.T) {
	ctx := context.Background()
	store := emulatorStore(t)
	defer store.Close()

	seedUser(t, store, "emu-U1", collections.UserEntry{TeamID: "emu-T1", Role: collections.RoleAdmin, Email: "u1@example.com"})
	seedUser(t, store, "emu-U2", collections.UserEntry{TeamID: "emu-T1", Role: collections.RoleMember, Email: "u2@example.com"})
	seedUser(t, store, "emu-U3", collections.UserEntry{TeamID: "emu-T2", Role: collections.RoleAdmin, Email: "u3@example.com"})

	users, err := store.TeamUsers(ctx, "emu-T1")
	if err != nil {
		t.Fatalf("TeamUsers gave error: %v when not expecting one.", err)
	}
	if len(users) != 2 {
		t.Errorf("TeamUsers gave %d users but want 2", len(users))
	}

	admins, err := store.TeamAdmins(ctx, "emu-T1")
	if err != nil {
		t.Fatalf("TeamAdmins gave error: %v when not expecting one.", err)
	}
	if len(admins) != 1 || admins[0].ID != "emu-U1" {
		t.Errorf("TeamAdmins gave %v but want just emu-U1", admins)
	}
}

func TestPurgeSubcollection(t *testing.T) {
	ctx := context.Background()
	store := emulatorStore(t)
	defer store.Close()

	staff := store.teamDoc("emu-T3").Collection(collections.StaffCollection)
	for _, id := range []string{"S1", "S2", "S3"} {
		if _, err := staff.Doc(id).Set(ctx, collections.StaffEntry{Name: id}); err != nil {
			t.Fatalf("seeding staff %s failed: %v", id, err)
		}
	}

	if err := store.PurgeSubcollection(ctx, "emu-T3", collections.StaffCollection); err != nil {
		t.Fatalf("PurgeSubcollection gave error: %v when not expecting one.", err)
	}
	remaining, err := staff.Documents(ctx).GetAll()
	if err != nil {
		t.Fatalf("reading back staff failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("PurgeSubcollection left %d documents but want none", len(remaining))
	}

	// Purging again must be a no-op, not an error.
	if err := store.PurgeSubcollection(ctx, "emu-T3", collections.StaffCollection); err != nil {
		t.Errorf("PurgeSubcollection of an empty subcollection gave error: %v", err)
	}
}

func TestClearPushToken(t *testing.T) {
	ctx := context.Background()
	store := emulatorStore(t)
	defer store.Close()

	seedUser(t, store, "emu-U9", collections.UserEntry{TeamID: "emu-T9", FCMToken: "tok-u9"})

	if err := store.ClearPushToken(ctx, "emu-U9"); err != nil {
		t.Fatalf("ClearPushToken gave error: %v when not expecting one.", err)
	}
	entry, exists, err := store.UserByID(ctx, "emu-U9")
	if err != nil || !exists {
		t.Fatalf("UserByID gave (%v, %t) after clearing the token", err, exists)
	}
	if entry.FCMToken != "" {
		t.Errorf("ClearPushToken left token %q but want it cleared", entry.FCMToken)
	}
}
