package service

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrEmptyMessage         = errors.New("message has neither body nor template")
	// ErrTemplateRequired is returned for free-form sends outside the 24h customer window.
	ErrTemplateRequired = errors.New("free-form window closed, a template is required")
)
