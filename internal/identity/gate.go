package identity

import (
	"fmt"

	"alumni-match/internal/common/errors"
)

// Require enforces that a verified claim's role is in the allowed set for an
// operation. A nil claim means a caller tried to skip verification. Role
// comparison is exact match; values were normalized during verification.
func Require(claims *Claims, allowed ...Role) error {
	if claims == nil || claims.Role == "" {
		return errors.NewForbiddenError("no verified identity")
	}
	for _, role := range allowed {
		if claims.Role == role {
			return nil
		}
	}
	return errors.NewForbiddenError(fmt.Sprintf("role %q not in allowed set", claims.Role))
}
