package upload

import (
	"sync"

	"github.com/google/uuid"
)

// Registry keeps the metadata of accepted uploads for the life of the process.
type Registry struct {
	mu    sync.RWMutex
	files map[uuid.UUID]*File
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{files: make(map[uuid.UUID]*File)}
}

// Add records f under its ID.
func (r *Registry) Add(f *File) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[f.ID] = f
}

// Get returns a copy of the file recorded under id.
func (r *Registry) Get(id uuid.UUID) (File, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.files[id]
	if !ok {
		return File{}, false
	}
	return *f, true
}

// Len returns the number of recorded uploads.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}
