package model

import "time"

// Review is immutable after creation. The read path returns newest-first.
type Review struct {
	ID        string    `json:"id,omitempty"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Content   string    `json:"content"`
	Rating    int64     `json:"rating,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Document converts the review to its stored form.
func (r Review) Document() Document {
	return Document{
		"email":     r.Email,
		"name":      r.Name,
		"content":   r.Content,
		"rating":    r.Rating,
		"createdAt": r.CreatedAt,
	}
}
