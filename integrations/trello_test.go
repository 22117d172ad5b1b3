package integrations

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bachnx23/trello-backup/config"
	"github.com/bachnx23/trello-backup/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *TrelloClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tc := NewTrelloClient(&config.Config{Key: "test-key", ApplicationToken: "test-token"})
	tc.client.SetBaseURL(srv.URL)
	return tc
}

func TestMemberBoards(t *testing.T) {
	tc := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/members/me/boards" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" || r.URL.Query().Get("token") != "test-token" {
			t.Errorf("missing auth params in %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"id":"b1","name":"Chores","closed":false,"idOrganization":""},
			{"id":"b2","name":"Work","closed":true,"idOrganization":"org1"}]`))
	}))

	boards, err := tc.MemberBoards()
	if err != nil {
		t.Fatalf("member boards: %v", err)
	}
	if len(boards) != 2 {
		t.Fatalf("expected 2 boards, got %d", len(boards))
	}
	if boards[1].Name != "Work" || !boards[1].Closed || boards[1].IDOrganization != "org1" {
		t.Fatalf("unexpected board: %+v", boards[1])
	}
}

func TestMemberBoardsEmptyResponseIsAuthError(t *testing.T) {
	tc := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid token"))
	}))

	_, err := tc.MemberBoards()
	if !errors.Is(err, ErrAPIAuth) {
		t.Fatalf("expected ErrAPIAuth, got %v", err)
	}
}

func TestMemberBoardsConnectionErrorIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	tc := NewTrelloClient(&config.Config{Key: "k", ApplicationToken: "t"})
	tc.client.SetBaseURL(srv.URL)
	srv.Close()

	_, err := tc.MemberBoards()
	if !errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}
}

func TestMemberOrganizationsEmptyListIsFine(t *testing.T) {
	tc := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	orgs, err := tc.MemberOrganizations()
	if err != nil {
		t.Fatalf("member organizations: %v", err)
	}
	if len(orgs) != 0 {
		t.Fatalf("expected no organizations, got %d", len(orgs))
	}
}

func TestOrganizationBoardsEmptyResponseNamesTheOrg(t *testing.T) {
	tc := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/organizations/org1/boards" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[]`))
	}))

	_, err := tc.OrganizationBoards(models.Organization{ID: "org1", DisplayName: "Acme Co"})
	if !errors.Is(err, ErrAPIAuth) {
		t.Fatalf("expected ErrAPIAuth, got %v", err)
	}
	if !strings.Contains(err.Error(), "Acme Co") {
		t.Fatalf("error should name the organization, got %q", err)
	}
}

func TestBoardExportReturnsVerbatimBytes(t *testing.T) {
	raw := "{\"name\": \"Chores\",  \"actions\": []}"
	tc := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/boards/b1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		for param, want := range map[string]string{
			"actions":       "all",
			"actions_limit": "1000",
			"cards":         "all",
			"lists":         "all",
			"members":       "all",
			"checklists":    "all",
			"fields":        "all",
		} {
			if q.Get(param) != want {
				t.Errorf("query param %s = %q, want %q", param, q.Get(param), want)
			}
		}
		w.Write([]byte(raw))
	}))

	body, err := tc.BoardExport(models.BoardSummary{ID: "b1", Name: "Chores"})
	if err != nil {
		t.Fatalf("board export: %v", err)
	}
	if string(body) != raw {
		t.Fatalf("body not verbatim: %q", body)
	}
}

func TestBoardExportUndecodableResponseNamesBoardAndOrg(t *testing.T) {
	tc := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))

	_, err := tc.BoardExport(models.BoardSummary{ID: "b1", Name: "Chores", OrgName: "Acme Co"})
	if !errors.Is(err, ErrAPIAuth) {
		t.Fatalf("expected ErrAPIAuth, got %v", err)
	}
	if !strings.Contains(err.Error(), "Chores") || !strings.Contains(err.Error(), "Acme Co") {
		t.Fatalf("error should name board and organization, got %q", err)
	}
}

func TestDownloadAttachmentSendsNoAuthParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "" || r.URL.Query().Get("token") != "" {
			t.Errorf("credentials leaked to attachment host: %s", r.URL.RawQuery)
		}
		w.Write([]byte("file-bytes"))
	}))
	t.Cleanup(srv.Close)

	tc := NewTrelloClient(&config.Config{Key: "k", ApplicationToken: "t"})

	data, err := tc.DownloadAttachment(srv.URL + "/files/a1")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(data) != "file-bytes" {
		t.Fatalf("unexpected data %q", data)
	}
}

func TestDownloadAttachmentStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	tc := NewTrelloClient(&config.Config{Key: "k", ApplicationToken: "t"})
	if _, err := tc.DownloadAttachment(srv.URL + "/files/a1"); err == nil {
		t.Fatal("expected an error for a 403 response")
	}
}
