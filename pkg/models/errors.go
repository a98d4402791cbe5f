package models

import (
	"fmt"
)

var (
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrUserUnavailable    = fmt.Errorf("user id or email is unavailable")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrPasswordMismatch   = fmt.Errorf("passwords do not match")

	// ErrPhotoNotFound is also returned when the caller may not access the photo.
	ErrPhotoNotFound = fmt.Errorf("photo not found")
	ErrAlbumNotFound = fmt.Errorf("album not found")
	ErrTagExists     = fmt.Errorf("tag already exists")
	ErrEmptyTag      = fmt.Errorf("tag cannot be empty")
	ErrEmptyComment  = fmt.Errorf("comment cannot be empty")

	ErrSessionInvalid = fmt.Errorf("session is missing or expired")
	ErrValidation     = fmt.Errorf("validation failed")
)
