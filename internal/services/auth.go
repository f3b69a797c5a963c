package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/osteobridge-backend/internal/data/repos"
	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/apierr"
	"github.com/yungbote/osteobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

const (
	minUsernameLen = 2
	maxUsernameLen = 32
	minEmailLen    = 4
	maxEmailLen    = 64
	minPasswordLen = 4
	maxPasswordLen = 16
)

type AuthService interface {
	RegisterUser(ctx context.Context, username, email, password string) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (string, *types.User, error)
	RefreshUser(ctx context.Context) (string, *types.User, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

// JWTClaims keeps the email claim the portal frontend reads; Subject is the
// numeric user id.
type JWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	blocklist    repos.TokenBlocklistRepo
	jwtSecretKey string
	accessTTL    time.Duration
	now          func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	blocklist repos.TokenBlocklistRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		blocklist:    blocklist,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		now:          time.Now,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

func badRequest(msg string) error {
	return apierr.New(http.StatusBadRequest, "invalid_argument", errors.New(msg))
}

func unauthorized(msg string) error {
	return apierr.New(http.StatusUnauthorized, "unauthorized", errors.New(msg))
}

func validateLength(field, v string, min, max int) error {
	if n := len(v); n < min || n > max {
		return badRequest(fmt.Sprintf("%s must be between %d and %d characters", field, min, max))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (as *authService) RegisterUser(ctx context.Context, username, email, password string) (*types.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if err := validateLength("Username", username, minUsernameLen, maxUsernameLen); err != nil {
		return nil, err
	}
	if err := validateLength("Email", email, minEmailLen, maxEmailLen); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, badRequest("Email address is invalid")
	}
	if err := validateLength("Password", password, minPasswordLen, maxPasswordLen); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created *types.User
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return badRequest("Email address is already registered")
		}
		created, err = as.userRepo.Create(dbc, &types.User{
			Username: username,
			Email:    email,
			Password: string(hash),
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return badRequest("Email address is already registered")
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", created.ID)
	return created, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, *types.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, badRequest("Email and password are required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	user, err := as.userRepo.GetByEmail(dbc, email)
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, badRequest("Invalid email or password")
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("generate access token: %w", err)
	}
	if err := as.userRepo.SetJWTAuthActive(dbc, user.ID, true); err != nil {
		return "", nil, fmt.Errorf("activate jwt auth: %w", err)
	}
	user.JWTAuthActive = true
	return token, user, nil
}

// RefreshUser revokes the caller's token and issues a new one.
func (as *authService) RefreshUser(ctx context.Context) (string, *types.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return "", nil, unauthorized("Valid JWT token is missing")
	}
	var (
		token string
		user  *types.User
	)
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := as.userRepo.GetByID(dbc, rd.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if u == nil {
			return badRequest("User not found")
		}
		if err := as.blocklist.Revoke(dbc, rd.TokenString); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
		tok, err := as.generateAccessToken(u)
		if err != nil {
			return fmt.Errorf("generate access token: %w", err)
		}
		token, user = tok, u
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return unauthorized("Valid JWT token is missing")
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := as.blocklist.Revoke(dbc, rd.TokenString); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
		if err := as.userRepo.SetJWTAuthActive(dbc, rd.UserID, false); err != nil {
			return fmt.Errorf("deactivate jwt auth: %w", err)
		}
		return nil
	})
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken verifies tokenString and attaches the caller to ctx.
// Revoked tokens, unknown users and users whose JWT auth was switched off
// are rejected.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, unauthorized("Valid JWT token is missing")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, unauthorized("Token has expired. Please login again.")
		}
		return ctx, unauthorized("Invalid token provided.")
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid || claims.Email == "" {
		return ctx, unauthorized("Invalid token provided.")
	}

	dbc := dbctx.Context{Ctx: ctx}
	user, err := as.userRepo.GetByEmail(dbc, normalizeEmail(claims.Email))
	if err != nil {
		return ctx, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return ctx, unauthorized("Invalid token. User does not exist.")
	}
	revoked, err := as.blocklist.IsRevoked(dbc, tokenString)
	if err != nil {
		return ctx, fmt.Errorf("check token blocklist: %w", err)
	}
	if revoked {
		return ctx, unauthorized("Token has been revoked.")
	}
	if !user.JWTAuthActive {
		return ctx, unauthorized("User authentication is disabled.")
	}

	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      user.ID,
		Email:       user.Email,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}
