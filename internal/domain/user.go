package domain

import "time"

// Role distinguishes participants from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserStatus represents lifecycle states for a participant record.
type UserStatus string

const (
	UserStatusInvited   UserStatus = "invited"
	UserStatusPending   UserStatus = "pending"
	UserStatusCompleted UserStatus = "completed"
	UserStatusVerified  UserStatus = "verified"
	UserStatusRejected  UserStatus = "rejected"
)

// settableStatuses are the states an admin may assign through the status
// update endpoint. "invited" is only ever set at creation.
var settableStatuses = map[UserStatus]struct{}{
	UserStatusPending:   {},
	UserStatusCompleted: {},
	UserStatusVerified:  {},
	UserStatusRejected:  {},
}

// IsSettableStatus reports whether an admin may assign the given status.
func IsSettableStatus(status UserStatus) bool {
	_, ok := settableStatuses[status]
	return ok
}

// User is the sole persistent entity: one record per invited participant.
// InvitationToken and InvitationExpires are present only while the record is
// in the invited state and are cleared on successful registration.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	College           string
	AadharNumber      string
	Role              Role
	Status            UserStatus
	InvitationToken   *string
	InvitationExpires *time.Time
	AadharPhotoURL    string
	CollegeIDPhotoURL string
	PhotoURL          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
