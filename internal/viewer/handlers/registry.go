package handlers

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"bim-viewer/internal/viewer/scene"
)

// ============================================================
// Document Registry
// ============================================================

// ErrNoDocument indicates an unknown or already closed document id.
var ErrNoDocument = errors.New("handlers: no such document")

type entry struct {
	mu  sync.Mutex
	doc *scene.Document
}

// Registry keeps the open documents by handle. A scene document is
// single-threaded by contract, so every access goes through With,
// which serializes callers per document.
type Registry struct {
	mu   sync.Mutex
	docs map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{docs: make(map[string]*entry)}
}

// Add registers a document and returns its handle.
func (r *Registry) Add(doc *scene.Document) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	r.docs[id] = &entry{doc: doc}
	return id
}

// With runs fn with exclusive access to the document.
func (r *Registry) With(id string, fn func(*scene.Document) error) error {
	r.mu.Lock()
	e, ok := r.docs[id]
	r.mu.Unlock()
	if !ok {
		return ErrNoDocument
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.doc)
}

// Remove discards a document. The whole model goes at once; there
// is no partial deletion.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return false
	}
	delete(r.docs, id)
	return true
}

// Len returns the number of open documents.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}
