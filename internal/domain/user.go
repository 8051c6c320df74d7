package domain

import "time"

// User represents a marketplace participant. ID is the stable actor id
// issued by the upstream identity provider, which also verifies the email's
// campus domain before requests reach this engine. Users are created lazily
// on an actor's first authenticated write and never deleted by the core.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}
