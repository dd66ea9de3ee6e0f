package service

import "errors"

var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrForbidden            = errors.New("you do not have permission to perform this action")
	ErrArticleNotFound      = errors.New("article not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrArticleUnpublished   = errors.New("cannot comment on unpublished article")
	ErrEmptyContent         = errors.New("comment content is required")
	ErrContentTooLong       = errors.New("comment content is too long")
	ErrInvalidParent        = errors.New("parent comment does not belong to this article")
	ErrInvalidName          = errors.New("category and tag names must be at most 50 characters")
	ErrEmailTaken           = errors.New("email is already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserDisabled         = errors.New("user account is disabled")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrSearchUnavailable    = errors.New("search is temporarily unavailable")
	ErrOAuthDisabled        = errors.New("google login is not configured")
	ErrOAuthState           = errors.New("invalid oauth state")
)
