package interview

import (
	"context"
	"errors"
	"time"

	"github.com/esnunes/featurechat/internal/models"
)

var (
	ErrNotFound     = errors.New("discussion not found")
	ErrInvalidState = errors.New("invalid discussion state")
)

// Store owns every discussion and its context for the life of the process.
// Implementations hand out copies; the only way to change a stored
// discussion is Update.
type Store interface {
	// Create allocates a fresh id and stores a new discussion whose cursor
	// points at cursor, together with an empty context.
	Create(ctx context.Context, title, cursor string, now time.Time) (*models.Discussion, *models.Context, error)
	Get(ctx context.Context, id string) (*models.Discussion, *models.Context, error)
	// List returns discussions in creation order.
	List(ctx context.Context) ([]*models.Discussion, error)
	// Update runs fn against copies of the stored discussion and context and
	// commits them only if fn returns nil.
	Update(ctx context.Context, id string, fn func(*models.Discussion, *models.Context) error) error
}
