package blob

import (
	"context"
	"fmt"

	infraFS "orgdirectory/internal/infra/blob/fs"
	infraMemory "orgdirectory/internal/infra/blob/memory"
	infraS3 "orgdirectory/internal/infra/blob/s3"
)

// S3Config carries the bucket, region and credentials of the S3 driver.
type S3Config = infraS3.Config

// Config selects and configures a blob driver.
type Config struct {
	Driver Driver
	// FSRoot is the directory root when Driver is fs (default ./blobdata).
	FSRoot string
	S3     S3Config
}

// Open constructs the Store named by cfg.Driver. An empty driver selects the
// filesystem backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewFilesystem opens a filesystem store rooted at root.
func NewFilesystem(root string) (Store, error) {
	s, err := infraFS.New(root)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemory returns an empty in-memory store.
func NewMemory() Store {
	return infraMemory.New()
}

// NewS3 connects a store to the configured bucket.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	s, err := infraS3.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}
