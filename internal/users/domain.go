package users

import "time"

// User is the account view used by the admin panel.
type User struct {
	ID        int64
	Username  string
	IsAdmin   bool
	IsActive  bool
	CreatedAt time.Time
}
