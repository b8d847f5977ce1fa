package geometry

import "errors"

var (
	ErrInvalidSource = errors.New("geometry: invalid or unknown source id")

	ErrUnknownFrame = errors.New("geometry: unknown frame id")

	ErrUnknownGeometry = errors.New("geometry: unknown geometry id")

	// ErrNotOwned indicates a handle registered by a different source.
	ErrNotOwned = errors.New("geometry: handle belongs to another source")

	ErrInvalidShape = errors.New("geometry: invalid shape")

	ErrResourceNotFound = errors.New("geometry: resource not found")

	ErrInvalidMesh = errors.New("geometry: invalid mesh")

	// ErrPoseMismatch indicates a pose vector that does not line up with the
	// frames it claims to drive.
	ErrPoseMismatch = errors.New("geometry: pose vector does not match frame ids")
)
