package domain

import "time"

// GenerationRecord is a gallery entry. Records are append-only.
type GenerationRecord struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Prompt      string    `json:"prompt" bson:"prompt"`
	ImageURL    string    `json:"image_url" bson:"image_url"`
	AuthorID    string    `json:"author_id" bson:"author_id"`
	AuthorEmail string    `json:"author_email" bson:"author_email"`
	ModelName   string    `json:"model_name" bson:"model_name"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
