package repository

import "errors"

var (
	ErrNotFound   = errors.New("repository: not found")
	ErrInvalidKey = errors.New("repository: invalid key")
)
