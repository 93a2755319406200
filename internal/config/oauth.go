package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// OAuthClientEnv points at the OAuth client file, bypassing the search
const OAuthClientEnv = "DUTIES_OAUTH_CLIENT"

// OAuthClientConfig is the "Desktop app" client file downloaded from the
// Google Cloud console
type OAuthClientConfig struct {
	Installed OAuthInstalled `json:"installed" validate:"required"`
}

// OAuthInstalled holds the fields the token flow reads. Project and
// certificate fields are kept so the file round-trips unchanged.
type OAuthInstalled struct {
	ClientID                string   `json:"client_id" validate:"required"`
	ClientSecret            string   `json:"client_secret" validate:"required"`
	AuthURI                 string   `json:"auth_uri" validate:"required,url"`
	TokenURI                string   `json:"token_uri" validate:"required,url"`
	RedirectURIs            []string `json:"redirect_uris" validate:"required,min=1,dive,uri"`
	ProjectID               string   `json:"project_id,omitempty"`
	AuthProviderX509CertURL string   `json:"auth_provider_x509_cert_url,omitempty" validate:"omitempty,url"`
}

// LoadOAuthClientWithEnv reads $DUTIES_OAUTH_CLIENT, or else oauthClient.<env>.json
// from the working or home directory
func LoadOAuthClientWithEnv(env string) (*OAuthClientConfig, error) {
	path := os.Getenv(OAuthClientEnv)
	if path == "" {
		found, err := findFile(envFileName("oauthClient", "json", env))
		if err != nil {
			return nil, fmt.Errorf("failed to find oauth client file: %w", err)
		}
		path = found
	}

	return LoadOAuthClientFromPath(path)
}

// LoadOAuthClientFromPath reads and validates one client file
func LoadOAuthClientFromPath(path string) (*OAuthClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client file: %w", err)
	}

	var oauthCfg OAuthClientConfig
	if err := json.Unmarshal(data, &oauthCfg); err != nil {
		return nil, fmt.Errorf("failed to parse oauth client file: %w", err)
	}

	if err := ValidateOAuthClient(&oauthCfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &oauthCfg, nil
}

func ValidateOAuthClient(cfg *OAuthClientConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("oauth client validation failed: %w", err)
	}
	return nil
}
