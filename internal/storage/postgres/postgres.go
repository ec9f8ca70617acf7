// Package postgres stores profiles, posts, votes and shown matches with
// sqlx on top of lib/pq.
package postgres

import (
	"errors"
)

// ErrNotFound reports a missing row.
var ErrNotFound = errors.New("postgres: not found")

const (
	componentProfiles = "service.profiles"
	componentSearch   = "service.search"
)
