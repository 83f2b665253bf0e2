package models

import (
	"errors"
	"fmt"
)

var (
	// general errors.
	ErrEmptyURL   = errors.New("URL cannot be empty")
	ErrEmptyToken = errors.New("token cannot be empty")

	// connection errors.
	ErrNoConnectionToReadFrom = errors.New("no connection to read from")
	ErrNoConnectionToWriteTo  = errors.New("no connection to write to")
	ErrConnectionClosed       = errors.New("connection closed")

	// home assistant errors.
	ErrNoStatesReceived      = errors.New("no states received")
	ErrUnexpectedMessageType = errors.New("unexpected message type")

	// entity id errors.
	ErrEmptyEntityID   = errors.New("empty entity id")
	ErrInvalidEntityID = errors.New("invalid entity id")

	// configuration errors.
	ErrDuplicateProfile  = errors.New("duplicate profile name")
	ErrDuplicateEntity   = errors.New("duplicate entity id")
	ErrMultipleColors    = errors.New("more than one color attribute")
	ErrInvalidColor      = errors.New("invalid color value")
	ErrNotFavoriteColor  = errors.New("color format cannot be a favorite color")
	ErrBrightnessRange   = errors.New("brightness out of range")
	ErrTransitionRange   = errors.New("transition out of range")
	ErrEmptySceneEntites = errors.New("scene has no entities")

	// lookup errors, surfaced to action callers.
	ErrUnknownProfile = errors.New("unknown profile")
	ErrUnknownOption  = errors.New("unknown option")
	ErrUnknownScene   = errors.New("unknown scene")
	ErrEntityNotFound = errors.New("entity not found")
)

func EmptyEntityIDErr() error {
	return fmt.Errorf("%w", ErrEmptyEntityID)
}

func InvalidEntityIDErr(rawEntityID string) error {
	return fmt.Errorf("%w: %s", ErrInvalidEntityID, rawEntityID)
}

func UnknownProfileErr(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownProfile, name)
}

func UnknownOptionErr(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownOption, name)
}

func EntityNotFoundErr(entityID string) error {
	return fmt.Errorf("%w: %s", ErrEntityNotFound, entityID)
}
