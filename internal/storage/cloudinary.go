package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/kaumahan/harvest-market-api/internal/config"
)

// Cloudinary stores media as image assets with folder-prefixed public IDs.
// The storage key keeps its file extension; the public ID drops it, the
// way Cloudinary derives delivery format from the URL suffix.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cfg config.StorageConfig) (*Cloudinary, error) {
	if cfg.CloudinaryURL == "" {
		return nil, errors.New("cloudinary storage requires CLOUDINARY_URL")
	}
	cld, err := cloudinary.NewFromURL(cfg.CloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: strings.Trim(cfg.CloudinaryFolder, "/")}, nil
}

func (c *Cloudinary) publicID(key string) string {
	id := strings.TrimSuffix(strings.TrimPrefix(key, "/"), path.Ext(key))
	if c.folder == "" {
		return id
	}
	return c.folder + "/" + id
}

func (c *Cloudinary) Save(ctx context.Context, key string, r io.Reader, _ int64, _ string) error {
	_, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:  c.publicID(key),
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("cloudinary upload: %w", err)
	}
	return nil
}

func (c *Cloudinary) URL(key string) string {
	ext := path.Ext(key)
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s%s",
		c.cld.Config.Cloud.CloudName, c.publicID(key), ext)
}

func (c *Cloudinary) Exists(ctx context.Context, key string) (bool, error) {
	asset, err := c.cld.Admin.Asset(ctx, admin.AssetParams{PublicID: c.publicID(key)})
	if err != nil {
		return false, fmt.Errorf("cloudinary asset lookup: %w", err)
	}
	if asset.Error.Message != "" {
		return false, nil
	}
	return true, nil
}

func (c *Cloudinary) Delete(ctx context.Context, key string) error {
	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: c.publicID(key)})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}
