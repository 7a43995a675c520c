package entity

import (
	"crypto/subtle"
	"time"
)

// OTP is the one-time code sub-record of a user. It exists only while a
// verification or reset flow is in progress.
type OTP struct {
	Code            string    `db:"otp_code"`
	ExpiresAt       time.Time `db:"otp_expires_at"`
	AttemptsToday   int       `db:"otp_attempts_today"`
	LastAttemptDate time.Time `db:"otp_last_attempt_date"`
}

// Matches reports whether code equals the stored one and the OTP has not
// expired at now. An OTP expiring exactly at now is still usable.
func (o *OTP) Matches(code string, now time.Time) bool {
	if o == nil || o.Code == "" || code == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(o.Code), []byte(code)) != 1 {
		return false
	}
	return !o.ExpiresAt.Before(now)
}

// AttemptsOn returns how many codes were issued on the UTC day of now.
func (o *OTP) AttemptsOn(now time.Time) int {
	if o == nil || o.LastAttemptDate.IsZero() {
		return 0
	}
	if !sameUTCDay(o.LastAttemptDate, now) {
		return 0
	}
	return o.AttemptsToday
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
