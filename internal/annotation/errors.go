package annotation

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentifierCollision reports an identifier issued or stored twice within one View
	ErrIdentifierCollision = errors.New("identifier collision")
	// ErrUnknownReference reports a cross reference to an entity the View does not hold
	ErrUnknownReference = errors.New("unknown reference")
)

// IdentifierCollisionError carries the colliding identifier and its type
type IdentifierCollisionError struct {
	ID   string
	Type AnnotationType
}

func (e *IdentifierCollisionError) Error() string {
	return fmt.Sprintf("identifier collision: %s already present (type %s)", e.ID, e.Type)
}

// Is allows errors.Is(err, ErrIdentifierCollision)
func (e *IdentifierCollisionError) Is(target error) bool {
	return target == ErrIdentifierCollision
}

// UnknownReferenceError carries the entity holding the dangling reference
type UnknownReferenceError struct {
	From string
	Ref  string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown reference: %s points at %s which is not in the view", e.From, e.Ref)
}

// Is allows errors.Is(err, ErrUnknownReference)
func (e *UnknownReferenceError) Is(target error) bool {
	return target == ErrUnknownReference
}
