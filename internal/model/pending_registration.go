package model

// PendingRegistration is a signup that has not yet proven ownership of Email.
type PendingRegistration struct {
	Email        string `json:"email" db:"email"`
	Name         string `json:"name" db:"name"`
	PasswordHash string `json:"password_hash" db:"password_hash"`
	OTPCode      int    `json:"otp_code" db:"otp_code"`
	ExpiresAt    int64  `json:"expires_at" db:"expires_at"`
	Ctime        int64  `json:"ctime" db:"ctime"`
}

func (p *PendingRegistration) IsExpired(now int64) bool {
	return now > p.ExpiresAt
}
