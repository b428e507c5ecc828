package auth

import (
	apperrors "dataset-feedback/backend/pkg/errors"
)

// RequireAdmin rejects callers who lack admin rights over ownerOrg. The
// rejection is indistinguishable from the target not existing, so probing
// admin URLs leaks nothing about which organizations exist.
func RequireAdmin(caller Caller, ownerOrg string) error {
	if caller.HasAdminRole(ownerOrg) {
		return nil
	}
	return apperrors.NewNotFoundOrForbidden()
}

// RequireAnyAdmin admits sysadmins and anyone who administers at least one
// organization. Used for the feedback listing, where per-row scoping happens
// in the query itself.
func RequireAnyAdmin(caller Caller) error {
	if caller.Sysadmin || len(caller.AdminOrgs) > 0 {
		return nil
	}
	return apperrors.NewNotFoundOrForbidden()
}
