package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"discovrr/internal/models"
	"discovrr/internal/validation"
)

const (
	tokenIssuer   = "discovrr-api"
	tokenAudience = "discovrr-client"
)

// Session is an authenticated user plus the bearer token identifying the session.
type Session struct {
	User  models.User
	Token string
}

// RegisterParams describes a new account and its profile.
type RegisterParams struct {
	Email       string
	Password    string
	DisplayName string
	Username    string
	Kind        models.ProfileKind
}

// AuthProvider signs users in and out.
type AuthProvider interface {
	SignInWithEmail(ctx context.Context, email, password string) (*Session, error)
	SignInWithToken(ctx context.Context, token string) (*Session, error)
	Register(ctx context.Context, params RegisterParams) (*Session, error)
	// SignOut revokes token. It returns ErrNoCurrentUser when no active
	// session matches.
	SignOut(ctx context.Context, token string) error
}

type jwtAuthProvider struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthProvider creates an AuthProvider issuing HS256 tokens valid for ttl.
func NewAuthProvider(db *gorm.DB, secret string, ttl time.Duration) AuthProvider {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &jwtAuthProvider{db: db, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (p *jwtAuthProvider) SignInWithEmail(ctx context.Context, email, password string) (*Session, error) {
	var account models.Account
	err := p.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); cmpErr != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return p.issue(ctx, p.db, account)
}

func (p *jwtAuthProvider) SignInWithToken(ctx context.Context, token string) (*Session, error) {
	claims, err := p.parse(token)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}
	var session models.Session
	err = p.db.WithContext(ctx).Where("id = ? AND expires_at > ?", claims.ID, p.now()).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewUnauthorizedError("Session revoked")
	}
	if err != nil {
		return nil, err
	}
	var account models.Account
	if err := p.db.WithContext(ctx).Where("id = ?", session.AccountID).First(&account).Error; err != nil {
		return nil, mapError(err, "account", session.AccountID)
	}
	return &Session{User: account.User(), Token: token}, nil
}

func (p *jwtAuthProvider) Register(ctx context.Context, params RegisterParams) (*Session, error) {
	if err := validation.ValidateEmail(params.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(params.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if params.Username != "" {
		if err := validation.ValidateUsername(params.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	if strings.TrimSpace(params.DisplayName) == "" {
		return nil, models.NewValidationError("Display name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var session *Session
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("LOWER(email) = ?", strings.ToLower(params.Email)).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.NewConflictError("Account already exists")
		}

		profile := models.Profile{
			Kind:        params.Kind,
			DisplayName: params.DisplayName,
			Email:       params.Email,
		}
		if params.Username != "" {
			profile.Username = params.Username
		} else {
			profile.Username = "user-" + uuid.NewString()[:8]
		}
		if err := tx.Create(&profile).Error; err != nil {
			return mapError(err, "profile", params.Username)
		}
		account := models.Account{
			Email:        params.Email,
			PasswordHash: string(hash),
			ProfileID:    profile.ID,
		}
		if err := tx.Create(&account).Error; err != nil {
			return mapError(err, "account", params.Email)
		}
		var issueErr error
		session, issueErr = p.issue(ctx, tx, account)
		return issueErr
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (p *jwtAuthProvider) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoCurrentUser
	}
	claims, err := p.parse(token)
	if err != nil {
		return ErrNoCurrentUser
	}
	res := p.db.WithContext(ctx).Where("id = ?", claims.ID).Delete(&models.Session{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoCurrentUser
	}
	return nil
}

type sessionClaims struct {
	ProfileID string `json:"profile_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

func (p *jwtAuthProvider) issue(ctx context.Context, db *gorm.DB, account models.Account) (*Session, error) {
	if len(p.secret) == 0 {
		return nil, models.NewInternalError(fmt.Errorf("JWT secret not configured"))
	}
	now := p.now()
	session := models.Session{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		ExpiresAt: now.Add(p.ttl),
	}
	claims := sessionClaims{
		ProfileID: account.ProfileID,
		Email:     account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        session.ID,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &Session{User: account.User(), Token: signed}, nil
}

func (p *jwtAuthProvider) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	return claims, nil
}
