package auth

// Caller is the authenticated identity attached to a request. AdminOrgs
// holds the ids of organizations the user administers; sysadmins bypass the
// org check entirely.
type Caller struct {
	UserID    string   `json:"user_id"`
	Sysadmin  bool     `json:"sysadmin"`
	AdminOrgs []string `json:"admin_orgs"`
}

// HasAdminRole reports whether the caller may moderate content belonging to
// the given organization.
func (c Caller) HasAdminRole(ownerOrg string) bool {
	if c.Sysadmin {
		return true
	}
	for _, org := range c.AdminOrgs {
		if org == ownerOrg {
			return true
		}
	}
	return false
}

// ScopeOrgs returns the org filter to push into listing queries. A nil
// result means no filter (sysadmin sees everything).
func (c Caller) ScopeOrgs() []string {
	if c.Sysadmin {
		return nil
	}
	orgs := make([]string, len(c.AdminOrgs))
	copy(orgs, c.AdminOrgs)
	return orgs
}
