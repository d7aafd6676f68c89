package models

import "time"

// Post is a feed entry written by faculty or an admin
type Post struct {
	Meta
	AuthorID   string    `json:"authorId"`
	AuthorRole string    `json:"authorRole" validate:"omitempty,oneof=faculty admin" example:"faculty"`
	Content    string    `json:"content" validate:"max=5000"`
	Likes      []string  `json:"likes"`    // Principal ids, no duplicates
	Comments   []Comment `json:"comments"` // Oldest first
}

// PostPatch carries the fields an update may change
type PostPatch struct {
	Content *string `json:"content,omitempty"`
}

// Comment is a reply under a post
type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorRole string    `json:"authorRole" example:"student"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LikeCount returns the number of distinct likes
func (p *Post) LikeCount() int { return len(p.Likes) }

// Normalize implements Normalizer
func (p *Post) Normalize() error {
	p.Likes = dedupe(p.Likes)
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	return nil
}
