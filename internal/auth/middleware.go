package auth

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "taskmanager/internal/errors"
)

// ContextKey is the echo context key holding the caller's *Identity.
const ContextKey = "identity"

var reasonCodes = map[Reason]string{
	ReasonMissing:          "TOKEN_MISSING",
	ReasonMalformed:        "TOKEN_MALFORMED",
	ReasonInvalidSignature: "INVALID_SIGNATURE",
	ReasonExpired:          "TOKEN_EXPIRED",
	ReasonInvalidIssuer:    "INVALID_ISSUER",
	ReasonInvalidAudience:  "INVALID_AUDIENCE",
}

// Middleware authenticates bearer tokens with svc and stores the identity on the context.
// Missing or rejected tokens produce a 401 naming the rejection reason.
func Middleware(svc *TokenService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return svc.ValidateToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			reason := ReasonMissing
			var rejection *RejectionError
			if errors.As(err, &rejection) {
				reason = rejection.Reason
			}
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Message: "unauthorized: " + string(reason),
				Code:    reasonCodes[reason],
			})
		},
	})
}

// CurrentIdentity returns the authenticated caller or ErrUnauthenticated.
func CurrentIdentity(c echo.Context) (*Identity, error) {
	id, ok := c.Get(ContextKey).(*Identity)
	if !ok || id == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return id, nil
}
