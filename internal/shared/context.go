package shared

import "context"

// Claims carries the authenticated user identity extracted from a token.
type Claims struct {
	UserID int64
	Email  string
	Role   string
}

type contextKey string

const claimsKey contextKey = "claims"

// ContextWithClaims stores claims in the context.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext retrieves claims from the context, or nil when the
// request is unauthenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}
