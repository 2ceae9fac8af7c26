package api

// Profile holds the descriptive attributes of an authenticated user as
// returned by the core backend.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ProfileUpdate is a partial profile as returned by GET /auth/me. Pointer
// fields distinguish "absent" from "empty" so callers can merge: present
// fields overwrite, absent fields are preserved.
type ProfileUpdate struct {
	ID       *string `json:"id"`
	Email    *string `json:"email"`
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	Avatar   *string `json:"avatar"`
}

// Merge applies the update on top of base and returns the result. A nil
// base starts from an empty profile.
func (u *ProfileUpdate) Merge(base *Profile) *Profile {
	merged := Profile{}
	if base != nil {
		merged = *base
	}
	if u == nil {
		return &merged
	}
	if u.ID != nil {
		merged.ID = *u.ID
	}
	if u.Email != nil {
		merged.Email = *u.Email
	}
	if u.Username != nil {
		merged.Username = *u.Username
	}
	if u.FullName != nil {
		merged.FullName = *u.FullName
	}
	if u.Role != nil {
		merged.Role = *u.Role
	}
	if u.Avatar != nil {
		merged.Avatar = *u.Avatar
	}
	return &merged
}

// LoginResult is the success shape of POST /auth/login.
type LoginResult struct {
	AccessToken string  `json:"accessToken"`
	User        Profile `json:"user"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of POST /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ProfilePatch is the partial body of PATCH /users/profile. Only non-nil
// fields are sent.
type ProfilePatch struct {
	FullName *string `json:"full_name,omitempty"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// Preferences is the body of PATCH /users/preferences.
type Preferences struct {
	EmailNotifications bool `json:"email_notifications"`
	TwoFactorAuth      bool `json:"two_factor_auth"`
	ActivityAlerts     bool `json:"activity_alerts"`
}

// AdminUser is a platform account as listed by GET /admin/users.
type AdminUser struct {
	ID        string `json:"_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Blocked   bool   `json:"isBlocked"`
	CreatedAt string `json:"createdAt"`
}

// Group is a platform group as listed by GET /admin/groups.
type Group struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	MemberCount int    `json:"memberCount"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// Post is a platform post as listed by GET /admin/posts.
type Post struct {
	ID        string `json:"_id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	Reported  bool   `json:"isReported,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Report is a moderation report as listed by GET /admin/reports.
type Report struct {
	ID        string `json:"_id"`
	Reporter  string `json:"reporter"`
	Target    string `json:"target"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt,omitempty"`
}
