package domain

// AuthProvider is one authentication-provider record attached to an account
// by the identity platform (e.g. password, google.com).
type AuthProvider struct {
	ProviderID string `json:"providerId"`
	UID        string `json:"uid,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Account is the identity platform's representation of a newly created user.
// It is created by the platform before the hook fires and is read-only here.
type Account struct {
	UID          string         `json:"uid"`
	Email        string         `json:"email"`
	DisplayName  string         `json:"displayName,omitempty"`
	TenantID     string         `json:"tenantId"`
	ProviderData []AuthProvider `json:"providerData"`
}

// FirstProviderID returns the provider id of the first authentication
// provider record, or "" when none is present.
func (a *Account) FirstProviderID() string {
	if len(a.ProviderData) == 0 {
		return ""
	}
	return a.ProviderData[0].ProviderID
}

// ProvisionedUser is the user-management API's view of a provisioned user.
// Only the opaque identifier is consumed.
type ProvisionedUser struct {
	ID string `json:"id"`
}

// CustomClaims is the sole output of a registration: the attributes the
// identity platform attaches to the account's tokens.
type CustomClaims struct {
	UserType          TenantCategory `json:"user_type"`
	ApplicationUserID string         `json:"application_user_id"`
	Roles             []string       `json:"roles"`
}
