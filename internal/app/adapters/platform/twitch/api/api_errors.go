package api

import "errors"

var (
	ErrUnauthorized = errors.New("token is invalid or expired")
	ErrRateLimited  = errors.New("rate limited")
	ErrNotFound     = errors.New("not found")
	ErrQueueFull    = errors.New("moderation queue is full")
)
