package models

import "time"

// Domain is a discussion area grouping posts, stored with a lowercased
// unique name.
type Domain struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DomainCreateRequest is the payload for creating a domain.
type DomainCreateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=64,alphanum"`
}
