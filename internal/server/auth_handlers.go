package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/minkgkyaw9899/m-blog-server/internal/cache"
	"github.com/minkgkyaw9899/m-blog-server/internal/middleware"
	"github.com/minkgkyaw9899/m-blog-server/internal/models"
	"github.com/minkgkyaw9899/m-blog-server/internal/response"
	"github.com/minkgkyaw9899/m-blog-server/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "m-blog-api"
	tokenAudience = "m-blog-client"
)

// SignUp handles POST /api/v1/auth/sign-up
// @Summary User sign-up
// @Description Register a new account and receive a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SignUpInput true "Sign-up request"
// @Success 200 {object} response.Envelope{data=response.AuthResponse}
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /auth/sign-up [post]
func (s *Server) SignUp(c *fiber.Ctx) error {
	var req service.SignUpInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := s.authService.SignUp(c.UserContext(), req)
	if err != nil {
		return err
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.NewInternalError(err)
	}
	return response.Success(c, fiber.StatusOK, "Successfully SignUp", response.NewAuthResponse(user, token))
}

// SignIn handles POST /api/v1/auth/sign-in
// @Summary User sign-in
// @Description Authenticate with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SignInInput true "Sign-in credentials"
// @Success 200 {object} response.Envelope{data=response.AuthResponse}
// @Failure 401 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /auth/sign-in [post]
func (s *Server) SignIn(c *fiber.Ctx) error {
	var req service.SignInInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := s.authService.SignIn(c.UserContext(), req)
	if err != nil {
		return err
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.NewInternalError(err)
	}
	return response.Success(c, fiber.StatusOK, "Successfully SignIn", response.NewAuthResponse(user, token))
}

// Me handles GET /api/v1/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=response.UserResponse}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	user, err := s.authService.Me(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Successfully get profile", response.NewUserResponse(user))
}

// SignOut handles POST /api/v1/auth/sign-out
// @Summary Sign out
// @Description Revoke the presented token until it would have expired
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/sign-out [post]
func (s *Server) SignOut(c *fiber.Ctx) error {
	jti, _ := c.Locals("tokenID").(string)
	expiresAt, _ := c.Locals("tokenExpiresAt").(time.Time)

	if s.redis == nil {
		middleware.Logger.WarnContext(c.UserContext(), "sign-out without redis; token stays valid until expiry")
	} else if err := cache.RevokeToken(c.UserContext(), s.redis, jti, time.Until(expiresAt)); err != nil {
		return models.NewInternalError(fmt.Errorf("revoke token: %w", err))
	}
	return response.Success(c, fiber.StatusOK, "Successfully SignOut", nil)
}

// generateToken creates a signed token whose subject is userID.
func (s *Server) generateToken(userID uint) (string, error) {
	if s.config.JWTSecret == "" {
		return "", errors.New("JWT secret not configured")
	}

	hours := s.config.JWTExpiresInHours
	if hours <= 0 {
		hours = 24 * 7
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(hours) * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// parseToken verifies signature, issuer, audience and time claims.
func (s *Server) parseToken(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// AuthRequired returns the authentication middleware. The token comes from a
// Bearer Authorization header only.
func (s *Server) AuthRequired() fiber.Handler {
	return s.authenticate(false)
}

// WebSocketAuthRequired also accepts the token query parameter, since browser
// websocket clients cannot set an Authorization header.
func (s *Server) WebSocketAuthRequired() fiber.Handler {
	return s.authenticate(true)
}

func (s *Server) authenticate(allowQuery bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""
		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" && allowQuery {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return models.NewUnauthorizedError("Authorization required")
		}

		claims, err := s.parseToken(tokenString)
		if err != nil {
			return models.NewUnauthorizedError("Invalid or expired token")
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 32)
		if err != nil || userID == 0 {
			return models.NewUnauthorizedError("Invalid user ID in token")
		}

		if s.isRevoked(c.UserContext(), claims.ID) {
			return models.NewUnauthorizedError("Token has been revoked")
		}

		c.Locals("userID", uint(userID))
		c.Locals("tokenID", claims.ID)
		if claims.ExpiresAt != nil {
			c.Locals("tokenExpiresAt", claims.ExpiresAt.Time)
		}
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// isRevoked fails open when Redis cannot be reached.
func (s *Server) isRevoked(ctx context.Context, jti string) bool {
	revoked, err := cache.IsTokenRevoked(ctx, s.redis, jti)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token revocation check failed", slog.String("error", err.Error()))
		return false
	}
	return revoked
}
