package domain

// UserRole separates regular requesters from support staff.
type UserRole string

const (
	UserRoleUser      UserRole = "user"
	UserRoleModerator UserRole = "moderator"
	UserRoleAdmin     UserRole = "admin"
)

// User is reference data: the directory tickets resolve createdBy against.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         UserRole
	PasswordHash string
}

// Ref snapshots the user for embedding in a ticket.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
