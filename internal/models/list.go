package models

// Visibility is the mode a list is created with.
type Visibility string

const (
	Private Visibility = "private"
	Public  Visibility = "public"
)

// User identifies the authenticated owner of a list.
type User struct {
	ID         string
	ScreenName string
}

// Known reports whether the user could be resolved from fetched data.
func (u User) Known() bool {
	return u.ID != ""
}

// List is a named, user-curated collection of members owned by one account.
//
// IDs differ per account; Name is the matching identity (case-sensitive, whole string).
type List struct {
	ID    string
	Name  string
	Owner User
}

// Member is a user entry within a list.
type Member struct {
	ID        string
	Protected bool
}

// MemberPage is one page of list members plus the continuation cursor.
//
// An empty NextCursor means there are no further pages.
type MemberPage struct {
	Members    []Member
	NextCursor string
}

// ListPair is a matched pair of lists, Left owned by account 1 and Right by account 2.
type ListPair struct {
	Left  List
	Right List
}

// Name returns the logical name shared by both sides of the pair.
func (p ListPair) Name() string {
	return p.Left.Name
}
