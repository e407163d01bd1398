package memory

import (
	"context"
	"fmt"
	"sync"
)

// Store is an in-memory auth.ProfileStore keyed by full tree path.
type Store struct {
	mu     sync.Mutex
	values map[string]any
	seq    int

	// WriteErr/AppendErr, when set, fail the corresponding operation.
	WriteErr  error
	AppendErr error
}

func NewStore() *Store {
	return &Store{values: map[string]any{}}
}

func (s *Store) WriteAt(ctx context.Context, path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.WriteErr != nil {
		return s.WriteErr
	}

	s.values[path] = value
	return nil
}

func (s *Store) AppendAt(ctx context.Context, pathPrefix string, value any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.AppendErr != nil {
		return "", s.AppendErr
	}

	s.seq++
	key := fmt.Sprintf("-K%06d", s.seq)
	s.values[pathPrefix+"/"+key] = value
	return key, nil
}

// ValueAt returns the value written at an exact path.
func (s *Store) ValueAt(path string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[path]
	return v, ok
}

// Children returns the appended values under a path prefix, keyed by the
// generated child key.
func (s *Store) Children(pathPrefix string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]any{}
	prefix := pathPrefix + "/"
	for path, v := range s.values {
		if len(path) > len(prefix) && path[:len(prefix)] == prefix {
			out[path[len(prefix):]] = v
		}
	}
	return out
}
