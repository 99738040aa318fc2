package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrEmptyScript        = errors.New("script is required")
	ErrNoScenes           = errors.New("unable to understand the provided script")
	ErrTemplateNotFound   = errors.New("template not found")
	ErrInvalidStyle       = errors.New("invalid style")
	ErrSynthesis          = errors.New("voice synthesis failed")
	ErrCaptureUnsupported = errors.New("media capture unsupported")
	ErrPersistence        = errors.New("persistence failure")
)
