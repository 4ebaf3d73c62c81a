package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"identity-hook/internal/domain"
)

// userCreationRequest is the payload of POST /api/v1/users.
type userCreationRequest struct {
	DisplayName      string `json:"displayName"`
	Email            string `json:"email"`
	ExternalID       string `json:"externalId"`
	IdentityProvider string `json:"identityProvider"`
	UserType         string `json:"userType"`
}

// conflictResponse carries the message of a 409 response.
type conflictResponse struct {
	Message string `json:"message"`
}

// UserManagementGateway provisions users in the external user-management API.
// Implements domain.UserProvisioner.
type UserManagementGateway struct {
	baseURL          string
	identityProvider string
	tokens           domain.ServiceTokenSource
	httpClient       *http.Client
	logger           *slog.Logger
}

// NewUserManagementGateway creates a user-management gateway with tuned HTTP transport.
func NewUserManagementGateway(baseURL, identityProvider string, tokens domain.ServiceTokenSource, timeout time.Duration, logger *slog.Logger) *UserManagementGateway {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return &UserManagementGateway{
		baseURL:          baseURL,
		identityProvider: identityProvider,
		tokens:           tokens,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// CreateUser provisions the account in the user-management API and returns
// the provisioned user. A 409 maps to *domain.ConflictError with the API's
// message taken verbatim; every other failure wraps
// domain.ErrProvisioningFailed and is never surfaced to end users.
func (g *UserManagementGateway) CreateUser(ctx context.Context, account *domain.Account, category domain.TenantCategory) (*domain.ProvisionedUser, error) {
	displayName := account.DisplayName
	if displayName == "" {
		displayName = account.Email
	}

	payload := userCreationRequest{
		DisplayName:      displayName,
		Email:            account.Email,
		ExternalID:       account.UID,
		IdentityProvider: g.identityProvider,
		UserType:         string(category),
	}

	g.logger.InfoContext(ctx, "creating user",
		"external_id", payload.ExternalID,
		"email", payload.Email,
		"display_name", payload.DisplayName,
		"user_type", payload.UserType,
		"identity_provider", payload.IdentityProvider)

	token, err := g.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProvisioningFailed, err)
	}

	url := fmt.Sprintf("%s/api/v1/users", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProvisioningFailed, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.ErrorContext(ctx, "user creation request failed", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrProvisioningFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var user domain.ProvisionedUser
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return nil, fmt.Errorf("%w: decoding response: %w", domain.ErrProvisioningFailed, err)
		}

		g.logger.InfoContext(ctx, "user successfully created", "user_id", user.ID)
		return &user, nil
	}

	if resp.StatusCode == http.StatusConflict {
		var conflict conflictResponse
		if err := json.NewDecoder(resp.Body).Decode(&conflict); err != nil {
			return nil, fmt.Errorf("%w: decoding conflict response: %w", domain.ErrProvisioningFailed, err)
		}

		g.logger.InfoContext(ctx, "user already exists",
			"external_id", payload.ExternalID,
			"message", conflict.Message)
		return nil, &domain.ConflictError{Message: conflict.Message}
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	g.logger.ErrorContext(ctx, "user creation failed",
		"status", resp.StatusCode,
		"body", string(detail))
	return nil, fmt.Errorf("%w: user management API returned status %d", domain.ErrProvisioningFailed, resp.StatusCode)
}
