package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"identity-hook/internal/domain"
)

// DefaultMetadataBaseURL is the GCE metadata server queried for the service
// account access token that authorizes Secret Manager reads.
const DefaultMetadataBaseURL = "http://metadata.google.internal"

// secretPayload mirrors the accessSecretVersion response body.
type secretPayload struct {
	Payload struct {
		Data string `json:"data"`
	} `json:"payload"`
}

// metadataToken mirrors the metadata server token response.
type metadataToken struct {
	AccessToken string `json:"access_token"`
}

// SecretManagerGateway resolves the signing key, either directly from
// configuration or by reading one secret version from Secret Manager.
// Implements domain.SigningKeyResolver.
type SecretManagerGateway struct {
	directKey       string
	secretName      string
	baseURL         string
	metadataBaseURL string
	httpClient      *http.Client
	logger          *slog.Logger
}

// NewSecretManagerGateway creates a signing-key resolver. secretName is a
// full secret version resource name (projects/p/secrets/s/versions/latest).
func NewSecretManagerGateway(directKey, secretName, baseURL, metadataBaseURL string, timeout time.Duration, logger *slog.Logger) *SecretManagerGateway {
	return &SecretManagerGateway{
		directKey:       directKey,
		secretName:      secretName,
		baseURL:         baseURL,
		metadataBaseURL: metadataBaseURL,
		httpClient:      &http.Client{Timeout: timeout},
		logger:          logger,
	}
}

// ResolveSigningKey returns the configured raw key when present, otherwise
// fetches the secret version. Fetch failures are logged and yield "": the
// caller's signing attempt then fails with an empty-key error. Nothing is
// cached here; reuse happens at the token level.
func (g *SecretManagerGateway) ResolveSigningKey(ctx context.Context) string {
	if g.directKey != "" {
		return g.directKey
	}

	key, err := g.accessSecretVersion(ctx)
	if err != nil {
		g.logger.ErrorContext(ctx, "error accessing secret",
			"secret", g.secretName,
			"error", err)
		return ""
	}

	return key
}

func (g *SecretManagerGateway) accessSecretVersion(ctx context.Context) (string, error) {
	if g.secretName == "" {
		return "", fmt.Errorf("%w: no secret name configured", domain.ErrSecretUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	accessToken, err := g.metadataAccessToken(ctx)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1/%s:access", g.baseURL, g.secretName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSecretUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSecretUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: secret manager returned status %d", domain.ErrSecretUnavailable, resp.StatusCode)
	}

	var payload secretPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSecretUnavailable, err)
	}

	data, err := base64.StdEncoding.DecodeString(payload.Payload.Data)
	if err != nil {
		return "", fmt.Errorf("%w: decoding secret payload: %w", domain.ErrSecretUnavailable, err)
	}

	return string(data), nil
}

// metadataAccessToken fetches a service account access token from the GCE
// metadata server.
func (g *SecretManagerGateway) metadataAccessToken(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/computeMetadata/v1/instance/service-accounts/default/token", g.metadataBaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSecretUnavailable, err)
	}
	req.Header.Set("Metadata-Flavor", "Google")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSecretUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: metadata server returned status %d", domain.ErrSecretUnavailable, resp.StatusCode)
	}

	var token metadataToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSecretUnavailable, err)
	}

	return token.AccessToken, nil
}
