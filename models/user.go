package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	UserID       string    `json:"userid" bson:"userid"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         Role      `json:"role" bson:"role"`
	Placeholder  bool      `json:"placeholder,omitempty" bson:"placeholder,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Capability is what the caller is allowed to do, read from the request's
// token and handed explicitly to every operation that checks it. The zero
// value is an anonymous caller.
type Capability struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Role   Role   `json:"role"`
}

func (c Capability) Authenticated() bool { return c.UserID != "" || c.Email != "" }

func (c Capability) IsAdmin() bool { return c.Role == RoleAdmin }

// Owns reports whether the caller is the owner identified by email.
func (c Capability) Owns(email string) bool {
	return c.Email != "" && strings.EqualFold(c.Email, email)
}
