package identity

import (
	stderrors "errors"

	"alumni-match/internal/common/errors"
	"alumni-match/internal/common/logger"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the wire shape of the token payload.
type tokenClaims struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens against a single configured algorithm.
// The algorithm is an explicit allow-list checked against the token header,
// never inferred from the token, which closes the algorithm-confusion
// downgrade attack.
type Verifier struct {
	algorithm string
	keys      KeyProvider
	parser    *jwt.Parser
	logger    logger.Logger
}

// NewVerifier creates a Verifier for the configured algorithm ("HS256" or "RS256").
func NewVerifier(algorithm string, keys KeyProvider, log logger.Logger) *Verifier {
	return &Verifier{
		algorithm: algorithm,
		keys:      keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{algorithm}),
			jwt.WithExpirationRequired(),
		),
		logger: log.WithFields(map[string]interface{}{"component": "verifier"}),
	}
}

// Verify checks the token and extracts the identity claim. It never logs or
// caches the raw token.
func (v *Verifier) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.NewInvalidCredentialError("missing bearer token")
	}

	var payload tokenClaims
	_, err := v.parser.ParseWithClaims(token, &payload, func(t *jwt.Token) (interface{}, error) {
		return v.keys.VerificationKey(v.algorithm)
	})
	if err != nil {
		// Key material problems are service configuration, not caller fault.
		var pipeErr *errors.PipelineError
		if stderrors.As(err, &pipeErr) && pipeErr.Code == errors.ErrCodeConfigurationError {
			v.logger.Error("verification key unavailable", map[string]interface{}{
				"algorithm": v.algorithm,
			})
			return nil, pipeErr
		}
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewInvalidCredentialError("token expired")
		}
		if stderrors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, errors.NewInvalidCredentialError("signature verification failed")
		}
		return nil, errors.NewInvalidCredentialError("malformed or unverifiable token")
	}

	if payload.Subject == "" {
		return nil, errors.NewInvalidCredentialError("token missing subject")
	}
	role, ok := ParseRole(payload.Role)
	if !ok {
		return nil, errors.NewInvalidCredentialError("unknown role in token")
	}

	claims := &Claims{
		SubjectID:   payload.Subject,
		Role:        role,
		DisplayName: payload.Name,
	}
	if payload.IssuedAt != nil {
		claims.IssuedAt = payload.IssuedAt.Time
	}
	if payload.ExpiresAt != nil {
		claims.ExpiresAt = payload.ExpiresAt.Time
	}
	return claims, nil
}
