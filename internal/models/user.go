package models

// User is a platform account. The chat subsystem only ever reads it.
type User struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Email     string  `db:"email" json:"email"`
	Role      string  `db:"role" json:"role"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url,omitempty"`
}

// DisplayName prefers the profile name and falls back to the email address.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// UserSummary is the participant info embedded in room and message views.
type UserSummary struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	IsOnline  bool    `json:"is_online"`
}

// Summary converts the user to its embeddable form. Presence is attached by
// the caller when available.
func (u User) Summary(isOnline bool) UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		IsOnline:  isOnline,
	}
}
