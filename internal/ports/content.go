package ports

import (
	"context"

	"github.com/alejandrodnm/miyomi/internal/domain"
)

// ContentGenerator convierte un pick en el texto de un post.
type ContentGenerator interface {
	Generate(ctx context.Context, pick domain.Pick) (string, error)
}

// Publisher publica un texto corto en una red social.
type Publisher interface {
	Publish(ctx context.Context, text string) (domain.PublishResult, error)
}
