package domain

import "slices"

// AdminIdentity is the configured administrator that never lives in the user store.
type AdminIdentity struct {
	Email    string
	Password string
}

// Principal is the resolved identity handed to authorization checks.
// UserID is nil for the configured administrator.
type Principal struct {
	UserID      *uint
	Username    string
	Password    string
	Authorities []Authority
}

func (p *Principal) HasAuthority(want ...Authority) bool {
	for _, a := range p.Authorities {
		if slices.Contains(want, a) {
			return true
		}
	}
	return false
}

func (p *Principal) IsAdmin() bool {
	return p.UserID == nil && p.HasAuthority(AuthorityAdmin)
}

func (p *Principal) AuthorityStrings() []string {
	out := make([]string, 0, len(p.Authorities))
	for _, a := range p.Authorities {
		out = append(out, string(a))
	}
	return out
}
