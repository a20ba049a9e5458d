package jwt

import (
	"Coffee-Shop-Backend/domain"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const bearerScheme = "Bearer"

type (
	JWTService interface {
		VerifyToken(ctx context.Context, token string) (*AuthClaims, error)
		CheckPermission(claims *AuthClaims, permission string) error
	}

	// AuthClaims are the claims the issuer puts in an access token.
	AuthClaims struct {
		Permissions []string `json:"permissions"`
		jwt.RegisteredClaims
	}

	Config struct {
		Domain     string
		Audience   string
		Algorithms []string
		// JWKSURL defaults to https://<Domain>/.well-known/jwks.json.
		JWKSURL    string
		CacheTTL   time.Duration
		HTTPClient *http.Client
	}

	jwtService struct {
		keys     *KeySet
		parser   *jwt.Parser
		issuer   string
		audience string
		logger   *zap.Logger
	}
)

func NewJWTService(cfg Config, logger *zap.Logger) JWTService {
	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = fmt.Sprintf("https://%s/.well-known/jwks.json", cfg.Domain)
	}
	algorithms := cfg.Algorithms
	if len(algorithms) == 0 {
		algorithms = []string{jwt.SigningMethodRS256.Alg()}
	}
	return &jwtService{
		keys:     NewKeySet(jwksURL, cfg.HTTPClient, cfg.CacheTTL, logger),
		parser:   jwt.NewParser(jwt.WithValidMethods(algorithms)),
		issuer:   fmt.Sprintf("https://%s/", cfg.Domain),
		audience: cfg.Audience,
		logger:   logger,
	}
}

// TokenFromHeader extracts the token from an "Authorization: Bearer <token>" header value.
func TokenFromHeader(header string) (string, error) {
	if header == "" {
		return "", domain.NewUnauthorizedError(domain.MessageMissingAuthHeader, nil)
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != bearerScheme || parts[1] == "" {
		return "", domain.NewUnauthorizedError(domain.MessageMalformedAuthHeader, nil)
	}
	return parts[1], nil
}

func (s *jwtService) VerifyToken(ctx context.Context, token string) (*AuthClaims, error) {
	unverified, _, err := s.parser.ParseUnverified(token, &AuthClaims{})
	if err != nil {
		return nil, domain.NewUnauthorizedError(domain.MessageFailedParseToken, err)
	}
	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, domain.NewUnauthorizedError(domain.MessageInvalidHeader, nil)
	}

	key, err := s.keys.Key(ctx, kid)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, domain.NewUnauthorizedError(domain.MessageKeyNotFound, err)
		}
		s.logger.Error("fetch signing keys", zap.Error(err))
		return nil, domain.NewUnauthorizedError(domain.MessageFailedFetchKeys, err)
	}

	claims := &AuthClaims{}
	parsed, err := s.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.NewUnauthorizedError(domain.MessageTokenExpired, err)
		}
		return nil, domain.NewUnauthorizedError(domain.MessageFailedParseToken, err)
	}
	if !parsed.Valid {
		return nil, domain.NewUnauthorizedError(domain.MessageFailedParseToken, nil)
	}
	if !claims.VerifyAudience(s.audience, true) || !claims.VerifyIssuer(s.issuer, true) {
		return nil, domain.NewUnauthorizedError(domain.MessageInvalidClaims, nil)
	}
	return claims, nil
}

func (s *jwtService) CheckPermission(claims *AuthClaims, permission string) error {
	if claims == nil || claims.Permissions == nil {
		return domain.NewUnauthorizedError(domain.MessageMissingPermissions, nil)
	}
	if !slices.Contains(claims.Permissions, permission) {
		return domain.NewForbiddenError(domain.MessageInsufficientPermission)
	}
	return nil
}
