package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"orgdirectory/internal/blob"
	"orgdirectory/pkg/domain"
)

// DefaultKey is the blob key used when none is given.
const DefaultKey = "datasets/directory.json.gz"

const (
	contentTypeJSON = "application/json"
	contentTypeGzip = "application/gzip"
)

// Importer replaces the contents of a store with a dataset.
type Importer interface {
	Import(ctx context.Context, ds domain.Dataset) error
}

func compressed(key string) bool {
	return strings.HasSuffix(key, ".gz")
}

// Save encodes ds as JSON under key, gzip-compressed when key ends in .gz.
func Save(ctx context.Context, store blob.Store, key string, ds domain.Dataset, overwrite bool) (blob.Info, error) {
	if key == "" {
		key = DefaultKey
	}
	var buf bytes.Buffer
	contentType := contentTypeJSON
	if compressed(key) {
		contentType = contentTypeGzip
		zw := gzip.NewWriter(&buf)
		if err := json.NewEncoder(zw).Encode(ds); err != nil {
			return blob.Info{}, fmt.Errorf("encode dataset: %w", err)
		}
		if err := zw.Close(); err != nil {
			return blob.Info{}, fmt.Errorf("compress dataset: %w", err)
		}
	} else if err := json.NewEncoder(&buf).Encode(ds); err != nil {
		return blob.Info{}, fmt.Errorf("encode dataset: %w", err)
	}
	info, err := store.Put(ctx, key, bytes.NewReader(buf.Bytes()), blob.PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"organisations": strconv.Itoa(len(ds.Organisations)),
			"activities":    strconv.Itoa(len(ds.Activities)),
			"buildings":     strconv.Itoa(len(ds.Buildings)),
		},
		Overwrite: overwrite,
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("store dataset %s: %w", key, err)
	}
	return info, nil
}

// Load reads and validates the dataset stored under key.
func Load(ctx context.Context, store blob.Store, key string) (domain.Dataset, error) {
	if key == "" {
		key = DefaultKey
	}
	_, rc, err := store.Get(ctx, key)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("open dataset %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()

	var r io.Reader = rc
	if compressed(key) {
		zr, err := gzip.NewReader(rc)
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("decompress dataset: %w", err)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}
	var ds domain.Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return domain.Dataset{}, fmt.Errorf("validate dataset: %w", err)
	}
	return ds, nil
}

// LoadInto reads the dataset under key and imports it into dst.
func LoadInto(ctx context.Context, store blob.Store, key string, dst Importer) (domain.Dataset, error) {
	ds, err := Load(ctx, store, key)
	if err != nil {
		return domain.Dataset{}, err
	}
	if err := dst.Import(ctx, ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("import dataset: %w", err)
	}
	return ds, nil
}
