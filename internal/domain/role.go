package domain

type RoleName string

const (
	RoleUser      RoleName = "USER"
	RoleOrganizer RoleName = "ORGANIZER"
	RoleAdmin     RoleName = "ADMIN"
)

// SeedRoles is the reference data inserted on first boot, in insertion order.
var SeedRoles = []struct {
	Name        RoleName
	Description string
}{
	{RoleUser, "Club member: browses the catalog and keeps a cart"},
	{RoleOrganizer, "Club organizer: curates books, authors and catalog products"},
	{RoleAdmin, "Administrator: manages roles and users"},
}

func (r RoleName) Valid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// Assignable reports whether a stored user may carry this role.
// ADMIN is granted only through the configured administrator identity.
func (r RoleName) Assignable() bool {
	return r == RoleUser || r == RoleOrganizer
}

type Authority string

const (
	AuthorityAdmin     Authority = "ROLE_ADMIN"
	AuthorityUser      Authority = "ROLE_USER"
	AuthorityOrganizer Authority = "ROLE_ORGANIZER"
)

// AuthorityMapping turns a stored user's role into the single authority it grants.
// The baseline role maps to BaselineAuthority, every other role to OtherAuthority.
type AuthorityMapping struct {
	Baseline          RoleName
	BaselineAuthority Authority
	OtherAuthority    Authority
}

func DefaultAuthorityMapping() AuthorityMapping {
	return AuthorityMapping{
		Baseline:          RoleUser,
		BaselineAuthority: AuthorityUser,
		OtherAuthority:    AuthorityOrganizer,
	}
}

func (m AuthorityMapping) For(role RoleName) Authority {
	if role == m.Baseline {
		return m.BaselineAuthority
	}
	return m.OtherAuthority
}
