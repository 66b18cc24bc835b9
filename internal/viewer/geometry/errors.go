package geometry

import "errors"

// ErrPayloadDecode indicates a malformed embedded geometry payload.
// Per-element and non-fatal: the element is skipped from the 3D
// scene, the rest of the model keeps processing.
var ErrPayloadDecode = errors.New("geometry: malformed mesh payload")
