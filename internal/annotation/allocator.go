package annotation

import "fmt"

// IdentifierAllocator issues sequential identifiers per annotation type.
// One allocator belongs to exactly one View; it is not safe for concurrent use.
type IdentifierAllocator struct {
	next   map[AnnotationType]int
	issued map[string]struct{}
}

// NewIdentifierAllocator creates an allocator with every counter at zero
func NewIdentifierAllocator() *IdentifierAllocator {
	return &IdentifierAllocator{
		next:   make(map[AnnotationType]int),
		issued: make(map[string]struct{}),
	}
}

// Next returns the next identifier for the given type, e.g. "t_0", "t_1"
func (ia *IdentifierAllocator) Next(kind AnnotationType) (string, error) {
	prefix, ok := prefixes[kind]
	if !ok {
		return "", fmt.Errorf("no identifier prefix for annotation type %q", kind)
	}

	id := fmt.Sprintf("%s_%d", prefix, ia.next[kind])
	if _, dup := ia.issued[id]; dup {
		return "", &IdentifierCollisionError{ID: id, Type: kind}
	}

	ia.next[kind]++
	ia.issued[id] = struct{}{}
	return id, nil
}

// Reserve marks an externally owned identifier as taken so it is never issued
func (ia *IdentifierAllocator) Reserve(id string) error {
	if _, dup := ia.issued[id]; dup {
		return &IdentifierCollisionError{ID: id}
	}
	ia.issued[id] = struct{}{}
	return nil
}

// Count returns how many identifiers of the given type were issued
func (ia *IdentifierAllocator) Count(kind AnnotationType) int {
	return ia.next[kind]
}
