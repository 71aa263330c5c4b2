// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/desertthunder/listsync/internal/models"
)

// AddCall records one bulk-add request made to a [FakeAccount].
type AddCall struct {
	ListID string
	IDs    []string
}

// Message records one direct message sent by a [FakeAccount].
type Message struct {
	RecipientID string
	Text        string
}

// FakeAccount is an in-memory test double for services.Account.
//
// Members are served in insertion order, PageSize at a time, with the offset as cursor.
type FakeAccount struct {
	mu       sync.Mutex
	label    string
	owner    models.User
	lists    []models.List
	members  map[string][]models.Member
	nextID   int
	PageSize int

	Adds       []AddCall
	Created    []models.List
	Messages   []Message
	PageCalls  int
	ListsErr   error
	MembersErr error
	AddErr     error
	AddErrList string // When set, AddErr only applies to this list ID
	CreateErr  error
	MessageErr error
}

// NewFakeAccount creates a [FakeAccount] whose lists are owned by owner.
func NewFakeAccount(label string, owner models.User) *FakeAccount {
	return &FakeAccount{label: label, owner: owner, members: map[string][]models.Member{}}
}

// AddList seeds a list with members and returns it.
func (f *FakeAccount) AddList(name string, members ...models.Member) models.List {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addListLocked(name, members)
}

func (f *FakeAccount) addListLocked(name string, members []models.Member) models.List {
	f.nextID++
	l := models.List{ID: f.label + "-" + strconv.Itoa(f.nextID), Name: name, Owner: f.owner}
	f.lists = append(f.lists, l)
	f.members[l.ID] = append([]models.Member(nil), members...)
	return l
}

// MemberIDs returns the ids of the members of the first list called name.
func (f *FakeAccount) MemberIDs(name string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.lists {
		if l.Name == name {
			ids := make([]string, 0, len(f.members[l.ID]))
			for _, m := range f.members[l.ID] {
				ids = append(ids, m.ID)
			}
			return ids
		}
	}
	return nil
}

// ListNames returns the names of all lists in creation order.
func (f *FakeAccount) ListNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.lists))
	for _, l := range f.lists {
		names = append(names, l.Name)
	}
	return names
}

func (f *FakeAccount) Name() string { return f.label }

func (f *FakeAccount) Lists(ctx context.Context) ([]models.List, error) {
	if f.ListsErr != nil {
		return nil, f.ListsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.List(nil), f.lists...), nil
}

func (f *FakeAccount) ListMembersPage(ctx context.Context, listID, cursor string, count int) (*models.MemberPage, error) {
	if f.MembersErr != nil {
		return nil, f.MembersErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.PageCalls++

	members, ok := f.members[listID]
	if !ok {
		return nil, fmt.Errorf("list %s not found", listID)
	}

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, fmt.Errorf("bad cursor %q", cursor)
		}
		offset = n
	}

	size := count
	if f.PageSize > 0 && f.PageSize < size {
		size = f.PageSize
	}
	end := min(offset+size, len(members))
	if offset > end {
		offset = end
	}

	page := &models.MemberPage{Members: append([]models.Member(nil), members[offset:end]...)}
	if end < len(members) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (f *FakeAccount) AddListMembers(ctx context.Context, listID string, memberIDs []string) error {
	if f.AddErr != nil && (f.AddErrList == "" || f.AddErrList == listID) {
		return f.AddErr
	}
	if len(memberIDs) > 100 {
		return fmt.Errorf("batch of %d exceeds 100", len(memberIDs))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Adds = append(f.Adds, AddCall{ListID: listID, IDs: append([]string(nil), memberIDs...)})

	existing := map[string]struct{}{}
	for _, m := range f.members[listID] {
		existing[m.ID] = struct{}{}
	}
	for _, id := range memberIDs {
		if _, ok := existing[id]; ok {
			continue
		}
		existing[id] = struct{}{}
		f.members[listID] = append(f.members[listID], models.Member{ID: id})
	}
	return nil
}

func (f *FakeAccount) CreateList(ctx context.Context, name string, mode models.Visibility) (*models.List, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.addListLocked(name, nil)
	f.Created = append(f.Created, l)
	return &l, nil
}

func (f *FakeAccount) SendDirectMessage(ctx context.Context, recipientID, text string) error {
	if f.MessageErr != nil {
		return f.MessageErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, Message{RecipientID: recipientID, Text: text})
	return nil
}

// ScriptedDecider answers prompts from a fixed script and records every prompt it sees.
//
// Once the script runs out it answers Default.
type ScriptedDecider struct {
	mu      sync.Mutex
	answers []bool
	Default bool
	Err     error
	Prompts []string
}

func NewScriptedDecider(answers ...bool) *ScriptedDecider {
	return &ScriptedDecider{answers: answers}
}

func (d *ScriptedDecider) Decide(ctx context.Context, prompt string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Prompts = append(d.Prompts, prompt)
	if d.Err != nil {
		return false, d.Err
	}
	if len(d.answers) == 0 {
		return d.Default, nil
	}
	answer := d.answers[0]
	d.answers = d.answers[1:]
	return answer, nil
}

// Public builds public members with the given ids.
func Public(ids ...string) []models.Member {
	members := make([]models.Member, 0, len(ids))
	for _, id := range ids {
		members = append(members, models.Member{ID: id})
	}
	return members
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
