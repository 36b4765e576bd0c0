package optics

import (
	"context"
	"fmt"
	"path"

	"github.com/TheIronBorn/stract/blobstore"
)

// Store resolves named/saved optics from a blob store. Scripts are validated
// on Put and stored in canonical form; Get compiles through the shared cache
// so a hot saved optic costs one compile.
type Store struct {
	blobs  blobstore.Store
	cache  *Cache
	prefix string
}

// NewStore creates an optic store. prefix defaults to "optics". cache may be
// nil, in which case a default-sized cache is created.
func NewStore(blobs blobstore.Store, cache *Cache, prefix string) *Store {
	if prefix == "" {
		prefix = "optics"
	}
	if cache == nil {
		cache = NewCache(0)
	}
	return &Store{blobs: blobs, cache: cache, prefix: prefix}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name) + ".optic"
}

// Get fetches and compiles the named optic.
func (s *Store) Get(ctx context.Context, name string) (*Optic, error) {
	data, err := s.blobs.Get(ctx, s.key(name))
	if err != nil {
		return nil, fmt.Errorf("optic %q: %w", name, err)
	}
	return s.cache.Compile(string(data))
}

// Put validates source and stores its canonical serialization under name.
// The compiled optic is returned so callers can use it immediately.
func (s *Store) Put(ctx context.Context, name, source string) (*Optic, error) {
	o, err := s.cache.Compile(source)
	if err != nil {
		return nil, err
	}
	if err := s.blobs.Put(ctx, s.key(name), []byte(o.Source())); err != nil {
		return nil, fmt.Errorf("optic %q: %w", name, err)
	}
	return o, nil
}

// Delete removes the named optic.
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.blobs.Delete(ctx, s.key(name))
}
