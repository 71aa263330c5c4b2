package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Form   map[string]string
	Body   string
	Auth   string
}

// fakeAPI serves canned responses per path and records every request.
type fakeAPI struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string][]string
	status    map[string]int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rec := recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   string(body),
		Auth:   r.Header.Get("Authorization"),
		Form:   map[string]string{},
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		if err := r.ParseForm(); err == nil {
			for k := range r.PostForm {
				rec.Form[k] = r.PostForm.Get(k)
			}
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	queue := f.responses[r.URL.Path]
	var resp string
	if len(queue) > 0 {
		resp = queue[0]
		f.responses[r.URL.Path] = queue[1:]
	}
	status := f.status[r.URL.Path]
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if resp == "" {
		resp = "{}"
	}
	io.WriteString(w, resp)
}

func newTestClient(t *testing.T, api *fakeAPI, creds shared.Credentials) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), ClientOpts{
		Label:       "Account 1",
		BaseURL:     srv.URL,
		Credentials: creds,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

var oauth1Creds = shared.Credentials{
	ConsumerKey:       "ck",
	ConsumerSecret:    "cs",
	AccessTokenKey:    "at",
	AccessTokenSecret: "as",
}

func TestNewClient(t *testing.T) {
	t.Run("Missing Credentials", func(t *testing.T) {
		_, err := NewClient(context.Background(), ClientOpts{Label: "Account 1"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Default Base URL", func(t *testing.T) {
		client, err := NewClient(context.Background(), ClientOpts{Label: "Account 1", Credentials: oauth1Creds})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.baseURL != defaultBaseURL {
			t.Errorf("expected %s, got %s", defaultBaseURL, client.baseURL)
		}
		if client.Name() != "Account 1" {
			t.Errorf("expected name Account 1, got %s", client.Name())
		}
	})

	t.Run("OAuth1 Signing", func(t *testing.T) {
		api := &fakeAPI{responses: map[string][]string{}}
		client := newTestClient(t, api, oauth1Creds)

		if _, err := client.Lists(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(api.requests[0].Auth, "OAuth ") {
			t.Errorf("expected OAuth 1.0a header, got %q", api.requests[0].Auth)
		}
		if !strings.Contains(api.requests[0].Auth, `oauth_consumer_key="ck"`) {
			t.Errorf("expected consumer key in header, got %q", api.requests[0].Auth)
		}
	})

	t.Run("Bearer Token", func(t *testing.T) {
		api := &fakeAPI{responses: map[string][]string{}}
		client := newTestClient(t, api, shared.Credentials{BearerToken: "tok"})

		if _, err := client.Lists(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if api.requests[0].Auth != "Bearer tok" {
			t.Errorf("expected bearer header, got %q", api.requests[0].Auth)
		}
	})
}

func TestClientLists(t *testing.T) {
	api := &fakeAPI{responses: map[string][]string{
		"/lists/ownerships.json": {
			`{"lists":[{"id_str":"10","name":"Friends","user":{"id_str":"1","screen_name":"alice"}}],"next_cursor_str":"55"}`,
			`{"lists":[{"id_str":"11","name":"Work","user":{"id_str":"1","screen_name":"alice"}}],"next_cursor_str":"0"}`,
		},
	}}
	client := newTestClient(t, api, oauth1Creds)

	lists, err := client.Lists(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(lists) != 2 {
		t.Fatalf("expected 2 lists across pages, got %d", len(lists))
	}
	if lists[0].Name != "Friends" || lists[1].ID != "11" {
		t.Errorf("unexpected lists: %+v", lists)
	}
	if lists[0].Owner.ScreenName != "alice" || lists[0].Owner.ID != "1" {
		t.Errorf("expected owner alice, got %+v", lists[0].Owner)
	}
	if !strings.Contains(api.requests[0].Query, "cursor=-1") {
		t.Errorf("first page should start at cursor -1, got %s", api.requests[0].Query)
	}
	if !strings.Contains(api.requests[1].Query, "cursor=55") {
		t.Errorf("second page should follow cursor, got %s", api.requests[1].Query)
	}
}

func TestClientListMembersPage(t *testing.T) {
	api := &fakeAPI{responses: map[string][]string{
		"/lists/members.json": {
			`{"users":[{"id_str":"1"},{"id_str":"2","protected":true}],"next_cursor_str":"0"}`,
		},
	}}
	client := newTestClient(t, api, oauth1Creds)

	page, err := client.ListMembersPage(context.Background(), "10", "", 9000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []models.Member{{ID: "1"}, {ID: "2", Protected: true}}
	if len(page.Members) != len(want) {
		t.Fatalf("expected %d members, got %d", len(want), len(page.Members))
	}
	for i := range want {
		if page.Members[i] != want[i] {
			t.Errorf("member %d: expected %+v, got %+v", i, want[i], page.Members[i])
		}
	}
	if page.NextCursor != "" {
		t.Errorf("end cursor should map to empty, got %q", page.NextCursor)
	}

	q := api.requests[0].Query
	for _, part := range []string{"list_id=10", "count=5000", "skip_status=true"} {
		if !strings.Contains(q, part) {
			t.Errorf("expected query to contain %s, got %s", part, q)
		}
	}
}

func TestClientAddListMembers(t *testing.T) {
	t.Run("Posts Comma Separated IDs", func(t *testing.T) {
		api := &fakeAPI{responses: map[string][]string{}}
		client := newTestClient(t, api, oauth1Creds)

		if err := client.AddListMembers(context.Background(), "10", []string{"1", "2", "3"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req := api.requests[0]
		if req.Method != http.MethodPost || req.Path != "/lists/members/create_all.json" {
			t.Errorf("unexpected request %s %s", req.Method, req.Path)
		}
		if req.Form["user_id"] != "1,2,3" || req.Form["list_id"] != "10" {
			t.Errorf("unexpected form %+v", req.Form)
		}
	})

	t.Run("Empty Batch", func(t *testing.T) {
		api := &fakeAPI{responses: map[string][]string{}}
		client := newTestClient(t, api, oauth1Creds)

		if err := client.AddListMembers(context.Background(), "10", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(api.requests) != 0 {
			t.Errorf("empty batch should not hit the API")
		}
	})

	t.Run("Oversized Batch", func(t *testing.T) {
		api := &fakeAPI{responses: map[string][]string{}}
		client := newTestClient(t, api, oauth1Creds)

		ids := make([]string, MaxAddBatch+1)
		for i := range ids {
			ids[i] = "x"
		}
		if err := client.AddListMembers(context.Background(), "10", ids); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("API Error", func(t *testing.T) {
		api := &fakeAPI{
			responses: map[string][]string{
				"/lists/members/create_all.json": {`{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`},
			},
			status: map[string]int{"/lists/members/create_all.json": http.StatusTooManyRequests},
		}
		client := newTestClient(t, api, oauth1Creds)

		err := client.AddListMembers(context.Background(), "10", []string{"1"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "Rate limit exceeded") {
			t.Errorf("expected status and message in error, got %v", err)
		}
	})
}

func TestClientCreateList(t *testing.T) {
	api := &fakeAPI{responses: map[string][]string{
		"/lists/create.json": {`{"id_str":"99","name":"Work","mode":"private","user":{"id_str":"2","screen_name":"bob"}}`},
	}}
	client := newTestClient(t, api, oauth1Creds)

	list, err := client.CreateList(context.Background(), "Work", models.Private)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.ID != "99" || list.Name != "Work" || list.Owner.ScreenName != "bob" {
		t.Errorf("unexpected list %+v", list)
	}
	if api.requests[0].Form["mode"] != "private" || api.requests[0].Form["name"] != "Work" {
		t.Errorf("unexpected form %+v", api.requests[0].Form)
	}

	if _, err := client.CreateList(context.Background(), "", models.Private); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty name, got %v", err)
	}
}

func TestClientSendDirectMessage(t *testing.T) {
	api := &fakeAPI{responses: map[string][]string{}}
	client := newTestClient(t, api, oauth1Creds)

	if err := client.SendDirectMessage(context.Background(), "2", "List sync complete. No changes made!"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var event directMessageEvent
	if err := json.Unmarshal([]byte(api.requests[0].Body), &event); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if event.Event.Type != "message_create" {
		t.Errorf("unexpected event type %s", event.Event.Type)
	}
	if event.Event.MessageCreate.Target.RecipientID != "2" {
		t.Errorf("unexpected recipient %s", event.Event.MessageCreate.Target.RecipientID)
	}
	if event.Event.MessageCreate.MessageData.Text != "List sync complete. No changes made!" {
		t.Errorf("unexpected text %q", event.Event.MessageCreate.MessageData.Text)
	}

	if err := client.SendDirectMessage(context.Background(), "", "hi"); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty recipient, got %v", err)
	}
}

func TestClientCancelledContext(t *testing.T) {
	api := &fakeAPI{responses: map[string][]string{}}
	client := newTestClient(t, api, oauth1Creds)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Lists(ctx); !errors.Is(err, shared.ErrAPIRequest) {
		t.Errorf("expected ErrAPIRequest for cancelled context, got %v", err)
	}
}
