package model

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleOperator UserRole = "operador"
	// UserRolePublic is never stored; it marks anonymous board visitors.
	UserRolePublic UserRole = ""
)

func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleOperator
}

type Principal struct {
	UserID   int64
	Username string
	Role     UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) IsOperator() bool {
	return p.Role == UserRoleOperator
}

// IsStaff covers everyone who works the terminal console.
func (p Principal) IsStaff() bool {
	return p.IsAdmin() || p.IsOperator()
}

func (p Principal) IsAuthenticated() bool {
	return p.UserID != 0 && p.Role.Valid()
}

// CanPickDate reports whether the principal may look at a day other than the
// civil today. Public visitors always get today.
func (p Principal) CanPickDate() bool {
	return p.IsStaff()
}
