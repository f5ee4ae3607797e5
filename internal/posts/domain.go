package posts

import "time"

// MaxTitleLength bounds post titles.
const MaxTitleLength = 100

// PerPage is the listing page size.
const PerPage = 10

// Post represents a published entry. AuthorName is denormalised from the
// users table for rendering.
type Post struct {
	ID         int64
	Title      string
	Body       string
	AuthorID   int64
	AuthorName string
	CreatedAt  time.Time
}
