package directory

import "time"

// UserRecord is the durable registry entry for one end user. Identity fields
// are refreshed on every inbound event; the ban flag and timestamps survive
// refreshes. Records are never deleted: a ban is a soft flag.
type UserRecord struct {
	ID            int64      `db:"user_id"`
	Handle        string     `db:"handle"`
	DisplayName   string     `db:"display_name"`
	Banned        bool       `db:"banned"`
	LastMessageAt *time.Time `db:"last_message_at"`
	FirstSeenAt   time.Time  `db:"first_seen_at"`
}
