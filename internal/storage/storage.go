package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/kaumahan/harvest-market-api/internal/config"
)

// Storage is the media capability interface. Keys are opaque,
// slash-separated paths like "products/<uuid>.jpg"; the rows that own an
// upload store the key, never the resolved URL.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(key string) string
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// New builds the backend named by cfg.Driver. Selection happens once at
// process startup; the rest of the application only sees the interface.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "local":
		return NewLocal(cfg.LocalRoot, cfg.LocalBaseURL)
	case "s3":
		return NewS3(ctx, cfg)
	case "cloudinary":
		return NewCloudinary(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
