package domain

import "time"

// User represents an authenticated account. The id is the subject claim from
// the identity provider token, so records are created via upsert on first
// sight rather than an explicit signup flow.
type User struct {
	ID             string
	Username       string
	ProfilePicture string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
