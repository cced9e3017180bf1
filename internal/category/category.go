package category

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates no category with that id belongs to the user.
	ErrNotFound = errors.New("category not found")
	// ErrExists indicates the user already has a category with that name.
	ErrExists = errors.New("category already exists")
	// ErrInUse indicates transactions still reference the category.
	ErrInUse = errors.New("category has transactions")
)

// Category is a user-scoped spending label. Names are unique per user;
// the reserved "Transfer" category is created lazily by the ledger.
type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	CreatedAt time.Time
}
