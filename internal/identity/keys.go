package identity

import (
	"crypto/rsa"
	"fmt"
	"os"

	"alumni-match/internal/common/config"
	"alumni-match/internal/common/errors"

	"github.com/golang-jwt/jwt/v5"
)

// KeyProvider supplies the verification key material for a configured
// algorithm. Implementations return CONFIGURATION_ERROR when no material is
// available for the requested algorithm.
type KeyProvider interface {
	VerificationKey(algorithm string) (interface{}, error)
}

// ConfigKeyProvider resolves key material from the auth configuration:
// a shared secret for HS256, an inline PEM or PEM file path for RS256.
// RSA keys are parsed once at construction.
type ConfigKeyProvider struct {
	secret    []byte
	publicKey *rsa.PublicKey
}

// NewConfigKeyProvider builds a provider from the auth config section.
// PEM parsing failures surface immediately rather than on first request.
func NewConfigKeyProvider(cfg config.AuthConfig) (*ConfigKeyProvider, error) {
	p := &ConfigKeyProvider{}
	if cfg.HSSecret != "" {
		p.secret = []byte(cfg.HSSecret)
	}

	pemData := []byte(cfg.RSAPublicKey)
	if len(pemData) == 0 && cfg.RSAPublicPath != "" {
		data, err := os.ReadFile(cfg.RSAPublicPath)
		if err != nil {
			return nil, errors.NewConfigurationError(
				fmt.Sprintf("cannot read RSA public key file: %v", err))
		}
		pemData = data
	}
	if len(pemData) > 0 {
		key, err := jwt.ParseRSAPublicKeyFromPEM(pemData)
		if err != nil {
			return nil, errors.NewConfigurationError(
				fmt.Sprintf("cannot parse RSA public key: %v", err))
		}
		p.publicKey = key
	}

	return p, nil
}

// VerificationKey returns the key for the given algorithm.
func (p *ConfigKeyProvider) VerificationKey(algorithm string) (interface{}, error) {
	switch algorithm {
	case "HS256":
		if len(p.secret) == 0 {
			return nil, errors.NewConfigurationError("no shared secret configured for HS256")
		}
		return p.secret, nil
	case "RS256":
		if p.publicKey == nil {
			return nil, errors.NewConfigurationError("no RSA public key configured for RS256")
		}
		return p.publicKey, nil
	default:
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("no key material for algorithm %q", algorithm))
	}
}
