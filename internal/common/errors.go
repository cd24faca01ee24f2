// Package common holds sentinel errors shared across repositories and
// services. Repositories translate driver errors into these so callers
// never branch on sql or pq types directly.
package common

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)
