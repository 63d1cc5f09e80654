// Package models defines the persistent data structures of the service.
package models

import "time"

// User is the credential record. Username is unique case-insensitively,
// Email is unique. RefreshToken holds the single currently valid refresh
// token for the user: set on login/refresh, cleared on logout.
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	AvatarURL     string
	CoverImageURL string
	PasswordHash  string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Sanitize returns a copy of the user safe to hand outside the service
// layer: the password hash and the stored refresh token are stripped.
func (u *User) Sanitize() *User {
	c := *u
	c.PasswordHash = ""
	c.RefreshToken = ""
	return &c
}
