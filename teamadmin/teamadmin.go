// Package teamadmin holds the admin-invoked team lifecycle handlers: tearing
// down a whole team and removing a single staff member's identity account.
// The handlers take their external collaborators as narrow interfaces so tests
// can drop in faked structs without the underlying Firestore/Auth clients.
package teamadmin

import (
	"context"

	"shiftserver/callcodes"
	log "shiftserver/cloudlog"
	"shiftserver/collections"
	"shiftserver/identity"
	"shiftserver/storage"
)

type datastore interface {
	UserByID(ctx context.Context, userID string) (*collections.UserEntry, bool, error)
	TeamUsers(ctx context.Context, teamID string) ([]storage.TeamUser, error)
	DeleteTeamDoc(ctx context.Context, teamID string) error
	PurgeSubcollection(ctx context.Context, teamID, subcollection string) error
	DeleteUserDocs(ctx context.Context, userIDs []string) error
}

type accountDeleter interface {
	DeleteAccount(ctx context.Context, uid string) error
}

// TeardownResult is returned to the caller of DeleteTeam on success.
type TeardownResult struct {
	Success bool `json:"success"`
	// DeletedUsers counts every member of the team, including the caller.
	DeletedUsers int    `json:"deletedUsers"`
	Message      string `json:"message"`
}

// RemovalResult is returned to the caller of DeleteStaffAccount on success.
type RemovalResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Handler implements the two callable admin operations.
type Handler struct {
	db       datastore
	accounts accountDeleter
}

// New creates a Handler around the given collaborators.
func New(db datastore, accounts accountDeleter) *Handler {
	return &Handler{db: db, accounts: accounts}
}

// DeleteTeam dissolves the team: the team document, every document in each of
// its subcollections, every member user document, and every other member's
// identity account. The caller's own identity account is never deleted here;
// that is left to the self-service account deletion flow.
//
// callerID is the authenticated caller's account ID; empty means the request
// carried no verified identity.
func (h *Handler) DeleteTeam(ctx context.Context, callerID, teamID string) (*TeardownResult, error) {
	if callerID == "" {
		return nil, callcodes.New(callcodes.Unauthenticated, "認証が必要です")
	}
	if teamID == "" {
		return nil, callcodes.New(callcodes.InvalidArgument, "teamIdが必要です")
	}

	log.Printf("team teardown start: %s, caller: %s", teamID, callerID)

	result, err := h.deleteTeam(ctx, callerID, teamID)
	if err != nil {
		log.Printf("team teardown error: %s: %v", teamID, err)
		if ce, ok := err.(*callcodes.Error); ok {
			return nil, ce
		}
		return nil, callcodes.Internalf("チーム解散に失敗しました: %v", err)
	}
	log.Printf("team teardown complete: %s", teamID)
	return result, nil
}

func (h *Handler) deleteTeam(ctx context.Context, callerID, teamID string) (*TeardownResult, error) {
	caller, exists, err := h.db.UserByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, callcodes.New(callcodes.PermissionDenied, "ユーザー情報が見つかりません")
	}
	if caller.TeamID != teamID {
		return nil, callcodes.New(callcodes.PermissionDenied, "このチームのメンバーではありません")
	}
	if caller.Role != collections.RoleAdmin {
		return nil, callcodes.New(callcodes.PermissionDenied, "管理者権限が必要です")
	}

	members, err := h.db.TeamUsers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	memberIDs := make([]string, 0, len(members))
	otherIDs := make([]string, 0, len(members))
	for _, member := range members {
		memberIDs = append(memberIDs, member.ID)
		if member.ID != callerID {
			otherIDs = append(otherIDs, member.ID)
		}
	}
	log.Printf("team %s members: %d, others: %d", teamID, len(memberIDs), len(otherIDs))

	// The team document goes first: collaborating write paths watch for team
	// state and would recreate default documents if they observed the
	// subcollections disappearing under a live team.
	if err := h.db.DeleteTeamDoc(ctx, teamID); err != nil {
		return nil, err
	}
	log.Printf("team document deleted: %s", teamID)

	for _, subcollection := range collections.TeamSubcollections {
		if err := h.db.PurgeSubcollection(ctx, teamID, subcollection); err != nil {
			return nil, err
		}
	}

	if err := h.db.DeleteUserDocs(ctx, memberIDs); err != nil {
		return nil, err
	}
	log.Printf("user documents deleted: %d", len(memberIDs))

	if err := h.deleteAccounts(ctx, otherIDs); err != nil {
		return nil, err
	}

	return &TeardownResult{
		Success:      true,
		DeletedUsers: len(memberIDs),
		Message:      "チーム解散が完了しました",
	}, nil
}

// deleteAccounts removes the identity accounts for all given IDs as
// independent concurrent operations. Every operation is waited on before the
// first failure (if any) is given back; siblings are never cancelled. An
// already-absent account counts as success.
func (h *Handler) deleteAccounts(ctx context.Context, uids []string) error {
	errc := make(chan error, len(uids))
	for _, uid := range uids {
		go func(uid string) {
			err := h.accounts.DeleteAccount(ctx, uid)
			switch err {
			case nil:
				log.Printf("account deleted: %s", uid)
			case identity.ErrAccountNotFound:
				log.Printf("account already deleted: %s", uid)
				err = nil
			default:
				log.Printf("account deletion failed: %s: %v", uid, err)
			}
			errc <- err
		}(uid)
	}
	var firstErr error
	for range uids {
		if err := <-errc; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeleteStaffAccount removes one identity account on behalf of an admin.
// Self-deletion is rejected; admins remove their own account through the
// self-service flow instead. Note that the target is addressed by account ID
// alone, with no check that it belongs to the caller's team.
func (h *Handler) DeleteStaffAccount(ctx context.Context, callerID, targetID string) (*RemovalResult, error) {
	if callerID == "" {
		return nil, callcodes.New(callcodes.Unauthenticated, "認証が必要です")
	}
	if targetID == "" {
		return nil, callcodes.New(callcodes.InvalidArgument, "userIdが必要です")
	}

	result, err := h.deleteStaffAccount(ctx, callerID, targetID)
	if err != nil {
		log.Printf("staff account removal error: %s: %v", targetID, err)
		if ce, ok := err.(*callcodes.Error); ok {
			return nil, ce
		}
		return nil, callcodes.Internalf("アカウント削除に失敗しました: %v", err)
	}
	return result, nil
}

func (h *Handler) deleteStaffAccount(ctx context.Context, callerID, targetID string) (*RemovalResult, error) {
	caller, exists, err := h.db.UserByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, callcodes.New(callcodes.PermissionDenied, "ユーザー情報が見つかりません")
	}
	if caller.Role != collections.RoleAdmin {
		return nil, callcodes.New(callcodes.PermissionDenied, "管理者権限が必要です")
	}
	if callerID == targetID {
		return nil, callcodes.New(callcodes.InvalidArgument, "自分自身のアカウントは退会機能から削除してください")
	}

	err = h.accounts.DeleteAccount(ctx, targetID)
	switch err {
	case nil:
		log.Printf("account deleted: %s", targetID)
	case identity.ErrAccountNotFound:
		log.Printf("account already deleted: %s", targetID)
	default:
		return nil, err
	}

	return &RemovalResult{
		Success: true,
		Message: "アカウントを削除しました",
	}, nil
}
