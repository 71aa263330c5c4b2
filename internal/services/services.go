// package services defines interface Account for interacting with the social network API
//
// REST (v1.1 list endpoints) over OAuth 1.0a or OAuth 2 bearer
package services

import (
	"context"

	"github.com/desertthunder/listsync/internal/models"
)

// Account defines the capabilities one side of the sync needs from the social network.
//
// Implementations are treated as reliable primitives: the caller does not retry.
type Account interface {
	// Lists retrieves all lists owned by the authenticated user.
	Lists(ctx context.Context) ([]models.List, error)

	// ListMembersPage retrieves one page of at most count members.
	// An empty cursor starts at the first page.
	ListMembersPage(ctx context.Context, listID, cursor string, count int) (*models.MemberPage, error)

	// AddListMembers adds up to [MaxAddBatch] users to a list.
	// Re-adding an existing member is a no-op.
	AddListMembers(ctx context.Context, listID string, memberIDs []string) error

	// CreateList creates a list owned by the authenticated user.
	CreateList(ctx context.Context, name string, mode models.Visibility) (*models.List, error)

	// SendDirectMessage sends text to the user with recipientID.
	SendDirectMessage(ctx context.Context, recipientID, text string) error

	// Name returns the label used for logging (e.g., "Account 1")
	Name() string
}

const (
	// MaxAddBatch is the most user IDs accepted by one bulk-add call.
	MaxAddBatch = 100
	// MaxMembersPage is the largest page the list members endpoint returns.
	MaxMembersPage = 5000
)
