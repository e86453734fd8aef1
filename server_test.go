package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shiftserver/callcodes"
	"shiftserver/collections"
	"shiftserver/storage"
	"shiftserver/teamadmin"
)

type fakeDatastore struct{}

func (fd *fakeDatastore) UserByID(ctx context.Context, userID string) (*collections.UserEntry, bool, error) {
	return &collections.UserEntry{TeamID: "T1", Role: collections.RoleAdmin}, true, nil
}

func (fd *fakeDatastore) TeamUsers(ctx context.Context, teamID string) ([]storage.TeamUser, error) {
	return nil, nil
}

func (fd *fakeDatastore) DeleteTeamDoc(ctx context.Context, teamID string) error { return nil }

func (fd *fakeDatastore) PurgeSubcollection(ctx context.Context, teamID, subcollection string) error {
	return nil
}

func (fd *fakeDatastore) DeleteUserDocs(ctx context.Context, userIDs []string) error { return nil }

type fakeAccounts struct{}

func (fa *fakeAccounts) DeleteAccount(ctx context.Context, uid string) error { return nil }

type fakeVerifier struct{}

func (fv *fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	if idToken == "good-token" {
		return "U1", nil
	}
	return "", errors.New("token expired")
}

func newTestServer() *server {
	return &server{
		admin:    teamadmin.New(&fakeDatastore{}, &fakeAccounts{}),
		verifier: &fakeVerifier{},
	}
}

func postDeleteTeam(srv *server, body, authorization string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, "/deleteTeamAndAllAccounts", strings.NewReader(body))
	if authorization != "" {
		request.Header.Set("Authorization", authorization)
	}
	recorder := httptest.NewRecorder()
	srv.handleDeleteTeam(recorder, request)
	return recorder
}

func TestHandleDeleteTeamFailureOrder(t *testing.T) {
	cases := []struct {
		name          string
		body          string
		authorization string
		status        int
		code          string
	}{
		{
			// The precondition order of the handler must hold end to end:
			// an anonymous caller is told to authenticate even when the
			// body is also malformed.
			name:   "anonymous caller with bad body gets unauthenticated",
			body:   "not json",
			status: http.StatusUnauthorized,
			code:   callcodes.Unauthenticated,
		},
		{
			name:          "authenticated caller with bad body gets invalid argument",
			body:          "not json",
			authorization: "Bearer good-token",
			status:        http.StatusBadRequest,
			code:          callcodes.InvalidArgument,
		},
		{
			name:          "unverifiable token gets unauthenticated",
			body:          `{"teamId":"T1"}`,
			authorization: "Bearer stale-token",
			status:        http.StatusUnauthorized,
			code:          callcodes.Unauthenticated,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := postDeleteTeam(newTestServer(), tc.body, tc.authorization)
			if recorder.Code != tc.status {
				t.Errorf("handleDeleteTeam gave status %d but want %d", recorder.Code, tc.status)
			}
			response := errorResponse{}
			if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
				t.Fatalf("decoding response failed: %v", err)
			}
			if response.Code != tc.code {
				t.Errorf("handleDeleteTeam gave code %q but want %q", response.Code, tc.code)
			}
		})
	}
}

func TestHandleDeleteTeamSuccess(t *testing.T) {
	recorder := postDeleteTeam(newTestServer(), `{"teamId":"T1"}`, "Bearer good-token")
	if recorder.Code != http.StatusOK {
		t.Fatalf("handleDeleteTeam gave status %d but want %d", recorder.Code, http.StatusOK)
	}
	result := teamadmin.TeardownResult{}
	if err := json.NewDecoder(recorder.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if !result.Success {
		t.Errorf("handleDeleteTeam gave result %+v but want success", result)
	}
}
