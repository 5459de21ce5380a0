package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/MediSynth-io/updateservice/internal/models"
	"github.com/MediSynth-io/updateservice/internal/store"
	"go.uber.org/zap"
)

// TokenRepository is the persistence the Authority needs.
type TokenRepository interface {
	UserExists(ctx context.Context, id int64) (bool, error)
	InsertToken(ctx context.Context, t *models.Token) error
	FindUserToken(ctx context.Context, userID int64, token string) (*models.Token, error)
	RevokeToken(ctx context.Context, userID int64, token string) error
	ActiveToken(ctx context.Context, userID int64, jti string) (bool, error)
	TouchLastLogin(ctx context.Context, userID int64, at time.Time) error
}

// Authority issues, revokes and authenticates bearer tokens.
type Authority struct {
	tokens *TokenManager
	repo   TokenRepository
	log    *zap.SugaredLogger
}

func NewAuthority(tokens *TokenManager, repo TokenRepository, lg *zap.SugaredLogger) *Authority {
	return &Authority{tokens: tokens, repo: repo, log: lg}
}

func (a *Authority) requireUser(ctx context.Context, userID int64) error {
	ok, err := a.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrUserNotFound
	}
	return nil
}

// CreateToken issues a new token for an existing user and records it as active.
func (a *Authority) CreateToken(ctx context.Context, userID int64) (*models.Token, error) {
	if err := a.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	signed, jti, err := a.tokens.Generate(userID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	t := &models.Token{UserID: userID, Token: signed, JTI: jti}
	if err := a.repo.InsertToken(ctx, t); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	return t, nil
}

// DeleteToken revokes a token of userID. The row is kept with deleted set.
func (a *Authority) DeleteToken(ctx context.Context, userID int64, token string) error {
	if err := a.requireUser(ctx, userID); err != nil {
		return err
	}
	if _, err := a.repo.FindUserToken(ctx, userID, token); err != nil {
		return err
	}
	return a.repo.RevokeToken(ctx, userID, token)
}

// Authenticate verifies an encoded token and returns its user id. Revoked
// tokens and tokens that were never issued both yield ErrTokenRevoked.
func (a *Authority) Authenticate(ctx context.Context, encoded string) (int64, error) {
	claims, err := a.tokens.Validate(encoded)
	if err != nil {
		return 0, err
	}

	active, err := a.repo.ActiveToken(ctx, claims.UserID, claims.ID)
	if err != nil {
		return 0, err
	}
	if !active {
		return 0, ErrTokenRevoked
	}

	if err := a.repo.TouchLastLogin(ctx, claims.UserID, time.Now()); err != nil {
		a.log.Warnw("failed to update last login",
			"user_id", claims.UserID,
			"error", err,
		)
	}

	return claims.UserID, nil
}
