package entity

type UserRole string

const (
	RoleClient    UserRole = "client"
	RoleAuthor    UserRole = "author"
	RolePublisher UserRole = "publisher"
	RoleAdmin     UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleClient, RoleAuthor, RolePublisher, RoleAdmin:
		return true
	}
	return false
}

// PublisherStatus is only carried by publisher accounts.
type PublisherStatus string

const (
	StatusPending  PublisherStatus = "pending"
	StatusActive   PublisherStatus = "active"
	StatusInactive PublisherStatus = "inactive"
)

func (s PublisherStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive:
		return true
	}
	return false
}

type User struct {
	Base
	Username     string           `db:"username"`
	Email        string           `db:"email"`
	PasswordHash string           `db:"password"`
	Role         UserRole         `db:"role"`
	Status       *PublisherStatus `db:"status"`
	IsVerified   bool             `db:"is_verified"`
	OTP          *OTP
}

func (u *User) IsPublisher() bool {
	return u.Role == RolePublisher
}

// EnsurePublisherStatus gives a publisher without a status the pending one.
// It reports whether the user changed.
func (u *User) EnsurePublisherStatus() bool {
	if u.IsPublisher() && u.Status == nil {
		status := StatusPending
		u.Status = &status
		return true
	}
	return false
}
