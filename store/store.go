// Package store persists compiled models as JSON Schema documents.
//
// A Store holds raw documents by key; Load and Save run the autoschema load
// and export paths on top of it so that documents coming back from storage are
// validated before they are compiled.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	autoschema "github.com/reoring/autoschema"
)

// Store is a key/value store for schema documents.
type Store interface {
	// Get returns the document stored under key. A missing key yields an
	// error wrapping autoschema.ErrSchemaNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores doc under key, replacing any previous document.
	Put(ctx context.Context, key string, doc []byte) error
	// Delete removes key. A missing key yields an error wrapping
	// autoschema.ErrSchemaNotFound.
	Delete(ctx context.Context, key string) error
	// List returns the stored keys in lexical order.
	List(ctx context.Context) ([]string, error)
}

// ErrInvalidKey reports a key that cannot be stored.
var ErrInvalidKey = errors.New("store: invalid key")

// Load fetches key from s and compiles it into a model named name (the
// document title is used when name is empty). Errors keep the autoschema
// load-path types: *autoschema.DecodeError, *autoschema.ValidationError and
// *autoschema.BuildError.
func Load(ctx context.Context, s Store, key, name string, opts ...autoschema.Options) (*autoschema.ModelDescriptor, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	m, err := autoschema.LoadBytes(data, autoschema.FormatJSON, name, opts...)
	if err != nil {
		var de *autoschema.DecodeError
		if errors.As(err, &de) {
			de.Source = key
		}
		return nil, err
	}
	return m, nil
}

// Save exports m, checks it against the JSON Schema meta-schema and stores it
// under key.
func Save(ctx context.Context, s Store, key string, m *autoschema.ModelDescriptor) error {
	data, err := autoschema.MarshalCheckedSchema(m)
	if err != nil {
		return err
	}
	return s.Put(ctx, key, data)
}

func notFound(key string) error {
	return fmt.Errorf("%w: %s", autoschema.ErrSchemaNotFound, key)
}

// checkKey accepts keys every backend can store and list back. Leading dots
// are reserved for FileStore temporaries.
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
