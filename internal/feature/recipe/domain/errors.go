// Package domain defines domain-level errors for the recipe feature.
package domain

import "errors"

var (
	// ErrNotFound is returned when a recipe, tag or ingredient does not exist
	// or belongs to another user. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrLabelExists is returned when creating or renaming a tag or ingredient
	// to a name the user already has for that kind.
	ErrLabelExists = errors.New("label with this name already exists")

	// ErrInvalidImage is returned when an upload does not decode as a supported image.
	ErrInvalidImage = errors.New("invalid image")
)
