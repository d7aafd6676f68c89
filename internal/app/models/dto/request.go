package dto

// CreatePostRequest is the body of a new feed post
type CreatePostRequest struct {
	Content string `json:"content" binding:"required,max=5000" example:"Hackathon registrations close Friday"`
}

// CommentRequest is the body of a new comment
type CommentRequest struct {
	Content string `json:"content" binding:"required,max=2000" example:"Count me in"`
}

// VerifyRequest sets the verification flag of an owned record
type VerifyRequest struct {
	Verified *bool `json:"verified" binding:"required" example:"true"`
}
