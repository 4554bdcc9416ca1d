package model

import "time"

// User is the local record for a platform user, keyed by the external ID
// assigned by the messaging platform. Created on first observed mention by an
// unknown external ID and never deleted by this subsystem.
type User struct {
	ExternalID string
	Name       string
	RealName   string
	Locale     string
	Email      string
	TZOffset   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewUser creates a User record from directory profile data
func NewUser(externalID, name, realName, locale, email string, tzOffset int) *User {
	now := time.Now().UTC()
	return &User{
		ExternalID: externalID,
		Name:       name,
		RealName:   realName,
		Locale:     locale,
		Email:      email,
		TZOffset:   tzOffset,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
