package model

import "time"

// User is the persisted account document. PasswordHash and the OTP fields are
// never serialized to JSON; callers hand out PublicUser instead.
type User struct {
	ID           string     `bson:"_id" json:"id"`
	Email        string     `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string     `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string     `bson:"passwordHash,omitempty" json:"-"`
	OTP          string     `bson:"otp,omitempty" json:"-"`
	OTPExpiresAt *time.Time `bson:"otpExpiresAt,omitempty" json:"-"`
	IsVerified   bool       `bson:"isVerified" json:"isVerified"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	LastLoginAt  *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
}

// PublicUser is the redacted account view returned to callers.
type PublicUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	IsVerified  bool       `json:"isVerified"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// Public returns the redacted view of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		Phone:       u.Phone,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// HasPendingOTP reports whether a verification challenge is outstanding.
func (u *User) HasPendingOTP() bool {
	return u.OTP != ""
}
