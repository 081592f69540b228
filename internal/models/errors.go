package models

import (
	"errors"
)

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrRequestNotFound    = errors.New("request not found")
	ErrUserNotFound       = errors.New("models: user not found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")

	ErrEmptyDescription = errors.New("description is required")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrInvalidRole      = errors.New("invalid role")

	ErrUploadFailed       = errors.New("media upload failed")
	ErrUnsupportedMedia   = errors.New("attachment must be an image or a video")
	ErrPermissionBlocked  = errors.New("permission blocked in system settings")
	ErrDuplicateProposal  = errors.New("proposal already submitted")
	ErrProposalNotFound   = errors.New("proposal not found")
	ErrForbidden          = errors.New("forbidden")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrMediaFieldMismatch = errors.New("mediaUrl and mediaType must be set together")
)
