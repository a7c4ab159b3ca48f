// Package bake compiles glTF scenes into pak models.
package bake

import "errors"

// Bake errors. All of them abort the bake of one asset; nothing is registered.
var (
	ErrSceneRead           = errors.New("scene unreadable")
	ErrMissingAttribute    = errors.New("primitive is missing a required attribute")
	ErrUnsupportedTopology = errors.New("primitive is not a triangle list")
	ErrMalformedPrimitive  = errors.New("malformed primitive")
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrMissingInverseBinds = errors.New("skin has no inverse bind matrices")
	ErrInvalidReference    = errors.New("scene references a missing element")
)
