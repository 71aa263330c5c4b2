// Social network API implementation of [Account]
//
// Response types based on the v1.1 list and direct message endpoints.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/dghubble/oauth1"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.twitter.com/1.1"
	endCursor      = "0"
	startCursor    = "-1"
	ownershipsPage = 1000
)

// APIUser represents the subset of a user object the sync reads.
type APIUser struct {
	ID         string `json:"id_str"`
	ScreenName string `json:"screen_name"`
	Protected  bool   `json:"protected"`
}

// APIList represents a list object.
type APIList struct {
	ID          string  `json:"id_str"`
	Name        string  `json:"name"`
	Mode        string  `json:"mode"`
	MemberCount int     `json:"member_count"`
	User        APIUser `json:"user"`
}

type listsPage struct {
	Lists      []APIList `json:"lists"`
	NextCursor string    `json:"next_cursor_str"`
}

type usersPage struct {
	Users      []APIUser `json:"users"`
	NextCursor string    `json:"next_cursor_str"`
}

type apiErrors struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

type messageTarget struct {
	RecipientID string `json:"recipient_id"`
}

type messageData struct {
	Text string `json:"text"`
}

type messageCreate struct {
	Target      messageTarget `json:"target"`
	MessageData messageData   `json:"message_data"`
}

type directMessageEvent struct {
	Event struct {
		Type          string        `json:"type"`
		MessageCreate messageCreate `json:"message_create"`
	} `json:"event"`
}

// ClientOpts contains configuration for creating a [Client].
type ClientOpts struct {
	Label       string
	BaseURL     string
	Credentials shared.Credentials
	RateLimit   float64 // Requests per second; 0 disables limiting
	Burst       int
	HTTPClient  *http.Client // Overrides credential-based transport (tests)
}

// Client implements [Account] over HTTP.
//
// Requests are signed with OAuth 1.0a, or carry an OAuth 2 bearer token when one is configured.
// Every request waits on a per-account [rate.Limiter].
type Client struct {
	label      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an authenticated client for one account.
func NewClient(ctx context.Context, opts ClientOpts) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		creds := opts.Credentials
		switch {
		case creds.UsesBearer():
			src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.BearerToken, TokenType: "Bearer"})
			httpClient = oauth2.NewClient(ctx, src)
		default:
			if creds.ConsumerKey == "" || creds.AccessTokenKey == "" {
				return nil, fmt.Errorf("%w: %s", shared.ErrMissingCredentials, opts.Label)
			}
			config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
			httpClient = config.Client(ctx, oauth1.NewToken(creds.AccessTokenKey, creds.AccessTokenSecret))
		}
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &Client{
		label:      opts.Label,
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, opts.Burst),
	}, nil
}

func (c *Client) Name() string {
	return c.label
}

// doRequest performs a rate limited request and decodes a JSON response into result.
//
// form and payload are mutually exclusive request bodies; query is appended to the URL.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, query, form url.Values, payload any, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, endpoint, err)
	}

	apiURL := c.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case form != nil:
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case payload != nil:
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s: status %d%s", shared.ErrAPIRequest, method, endpoint, resp.StatusCode, errorDetail(resp.Body))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

// errorDetail extracts the first API error message from a failed response body.
func errorDetail(r io.Reader) string {
	var e apiErrors
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&e); err != nil || len(e.Errors) == 0 {
		return ""
	}
	return fmt.Sprintf(" (code %d: %s)", e.Errors[0].Code, e.Errors[0].Message)
}

func toList(l APIList) models.List {
	return models.List{
		ID:    l.ID,
		Name:  l.Name,
		Owner: models.User{ID: l.User.ID, ScreenName: l.User.ScreenName},
	}
}

// Lists retrieves every list owned by the authenticated user, following cursors.
func (c *Client) Lists(ctx context.Context) ([]models.List, error) {
	var lists []models.List
	cursor := startCursor

	for {
		query := url.Values{
			"count":  {strconv.Itoa(ownershipsPage)},
			"cursor": {cursor},
		}

		var page listsPage
		if err := c.doRequest(ctx, http.MethodGet, "/lists/ownerships.json", query, nil, nil, &page); err != nil {
			return nil, err
		}

		for _, l := range page.Lists {
			lists = append(lists, toList(l))
		}

		if page.NextCursor == "" || page.NextCursor == endCursor {
			break
		}
		cursor = page.NextCursor
	}

	return lists, nil
}

// ListMembersPage retrieves one page of list members.
func (c *Client) ListMembersPage(ctx context.Context, listID, cursor string, count int) (*models.MemberPage, error) {
	if cursor == "" {
		cursor = startCursor
	}
	if count <= 0 || count > MaxMembersPage {
		count = MaxMembersPage
	}

	query := url.Values{
		"list_id":     {listID},
		"count":       {strconv.Itoa(count)},
		"cursor":      {cursor},
		"skip_status": {"true"},
	}

	var page usersPage
	if err := c.doRequest(ctx, http.MethodGet, "/lists/members.json", query, nil, nil, &page); err != nil {
		return nil, err
	}

	members := make([]models.Member, 0, len(page.Users))
	for _, u := range page.Users {
		members = append(members, models.Member{ID: u.ID, Protected: u.Protected})
	}

	next := page.NextCursor
	if next == endCursor {
		next = ""
	}

	return &models.MemberPage{Members: members, NextCursor: next}, nil
}

// AddListMembers adds a batch of users to a list.
func (c *Client) AddListMembers(ctx context.Context, listID string, memberIDs []string) error {
	if len(memberIDs) == 0 {
		return nil
	}
	if len(memberIDs) > MaxAddBatch {
		return fmt.Errorf("%w: at most %d members per call, got %d", shared.ErrInvalidInput, MaxAddBatch, len(memberIDs))
	}

	form := url.Values{
		"list_id": {listID},
		"user_id": {strings.Join(memberIDs, ",")},
	}
	return c.doRequest(ctx, http.MethodPost, "/lists/members/create_all.json", nil, form, nil, nil)
}

// CreateList creates a list with the given visibility mode.
func (c *Client) CreateList(ctx context.Context, name string, mode models.Visibility) (*models.List, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: list name is empty", shared.ErrInvalidInput)
	}
	if mode == "" {
		mode = models.Private
	}

	form := url.Values{
		"name": {name},
		"mode": {string(mode)},
	}

	var created APIList
	if err := c.doRequest(ctx, http.MethodPost, "/lists/create.json", nil, form, nil, &created); err != nil {
		return nil, err
	}

	list := toList(created)
	return &list, nil
}

// SendDirectMessage sends a direct message event to recipientID.
func (c *Client) SendDirectMessage(ctx context.Context, recipientID, text string) error {
	if recipientID == "" {
		return fmt.Errorf("%w: recipient is empty", shared.ErrInvalidInput)
	}

	var event directMessageEvent
	event.Event.Type = "message_create"
	event.Event.MessageCreate = messageCreate{
		Target:      messageTarget{RecipientID: recipientID},
		MessageData: messageData{Text: text},
	}

	return c.doRequest(ctx, http.MethodPost, "/direct_messages/events/new.json", nil, nil, event, nil)
}
