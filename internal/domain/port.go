package domain

import "context"

// UserProvisioner creates the account's counterpart in the external
// user-management system.
type UserProvisioner interface {
	CreateUser(ctx context.Context, account *Account, category TenantCategory) (*ProvisionedUser, error)
}

// ServiceTokenSource supplies the signed service-to-service token presented
// to the user-management API.
type ServiceTokenSource interface {
	Token(ctx context.Context) (string, error)
}

// SigningKeyResolver supplies the PEM-encoded private signing key. A failed
// resolution yields ""; signing with an empty key fails downstream.
type SigningKeyResolver interface {
	ResolveSigningKey(ctx context.Context) string
}

// TokenCache holds the single cached service token for its reuse window.
type TokenCache interface {
	Get() (string, bool)
	Set(token string)
}
