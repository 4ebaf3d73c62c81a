package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Port                       string        // Service port
	GCPProject                 string        // GCP project hosting the identity platform
	AgencyTenantID             string        // Tenant id classified as agency
	PublicTenantID             string        // Reserved; classification treats everything non-agency as public
	JWTIssuer                  string        // Issuer claim of the service token
	JWTSigningPrivateKey       string        // Raw PEM signing key (optional)
	JWTSigningPrivateKeySecret string        // Secret Manager version name, used when the raw key is absent
	UserManagementBaseURL      string        // Base URL of the user-management API
	SecretManagerBaseURL       string        // Secret Manager API base URL
	IdentityProvider           string        // Derived: securetoken issuer URL for this project
	TokenCacheTTL              time.Duration // Service token reuse window
	ServiceTokenTTL            time.Duration // Intrinsic service token expiry
	HookSharedSecret           string        // Shared secret guarding the hook endpoint
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	gcpProject := getEnv("GCP_PROJECT", "")

	config := &Config{
		Port:                       getEnv("PORT", "8888"),
		GCPProject:                 gcpProject,
		AgencyTenantID:             getEnv("AGENCY_TENANT_ID", ""),
		PublicTenantID:             getEnv("PUBLIC_TENANT_ID", ""),
		JWTIssuer:                  getEnv("JWT_ISSUER", "dsgov"),
		JWTSigningPrivateKey:       getEnv("JWT_SIGNING_PRIVATE_KEY", ""),
		JWTSigningPrivateKeySecret: getEnv("JWT_SIGNING_PRIVATE_KEY_SECRET", ""),
		UserManagementBaseURL:      getEnv("USER_MANAGEMENT_BASE_URL", ""),
		SecretManagerBaseURL:       getEnv("SECRET_MANAGER_BASE_URL", "https://secretmanager.googleapis.com"),
		IdentityProvider:           fmt.Sprintf("https://securetoken.google.com/%s", gcpProject),
		TokenCacheTTL:              3 * time.Minute, // Default 3 minutes
		ServiceTokenTTL:            5 * time.Minute, // Default 5 minutes
		HookSharedSecret:           getEnv("HOOK_SHARED_SECRET", ""),
	}

	// Parse TOKEN_CACHE_TTL if provided
	if ttlStr := os.Getenv("TOKEN_CACHE_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_CACHE_TTL format: %w", err)
		}
		config.TokenCacheTTL = duration
	}

	// Parse SERVICE_TOKEN_TTL if provided
	if ttlStr := os.Getenv("SERVICE_TOKEN_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVICE_TOKEN_TTL format: %w", err)
		}
		config.ServiceTokenTTL = duration
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.UserManagementBaseURL == "" {
		return fmt.Errorf("USER_MANAGEMENT_BASE_URL cannot be empty")
	}

	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.TokenCacheTTL <= 0 {
		return fmt.Errorf("TOKEN_CACHE_TTL must be positive")
	}

	if c.TokenCacheTTL > c.ServiceTokenTTL {
		return fmt.Errorf("TOKEN_CACHE_TTL must not exceed SERVICE_TOKEN_TTL")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
