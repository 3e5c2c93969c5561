package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/cryptox"
	"github.com/aussiebroadwan/dds2/pkg/idx"
	"github.com/aussiebroadwan/dds2/pkg/jwtx"
	"github.com/aussiebroadwan/dds2/pkg/metricsx"
	"github.com/aussiebroadwan/dds2/pkg/slogx"
)

// ScopeAPI is carried by every access token and required by /api routes.
const ScopeAPI = "api"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrOTPRequired        = errors.New("otp_required")
	ErrInvalidOTP         = errors.New("invalid_otp")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
)

// TokenPair is an access JWT plus its opaque refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

type TokenService struct {
	Base
	KeyManager *jwtx.KeyManager
	Metrics    *metricsx.Metrics
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Login checks a username and password, plus a TOTP code when the user's
// profile has 2FA enabled.
func (s *TokenService) Login(ctx context.Context, username, password, otpCode string) (TokenPair, error) {
	now := s.now()
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, err
	}
	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("password verification failed", slog.String("user_id", u.ID))
		return TokenPair{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return TokenPair{}, ErrInvalidCredentials
	}

	p, err := s.Store.Profiles().GetProfileByUserID(ctx, u.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return TokenPair{}, err
	case p.Enable2FA:
		if otpCode == "" {
			return TokenPair{}, ErrOTPRequired
		}
		if !validTOTP(otpCode, p.TOTPSecret, now) {
			l.Info("otp verification failed", slog.String("user_id", u.ID))
			return TokenPair{}, ErrInvalidOTP
		}
	}

	var pair TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		issued, err := s.issue(ctx, tx, u, now)
		pair = issued
		return err
	})
	return pair, err
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *TokenService) Refresh(ctx context.Context, refresh string) (TokenPair, error) {
	now := s.now()
	fp := cryptox.FingerprintToken(refresh)

	var pair TokenPair
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidRefresh
		}
		if err != nil {
			return err
		}
		if rt.Revoked || !now.Before(rt.ExpiresAt) {
			return ErrInvalidRefresh
		}

		u, err := tx.Users().GetUserByID(ctx, rt.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidRefresh
		}
		if err != nil {
			return err
		}
		if !u.IsActive {
			return ErrInvalidRefresh
		}

		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		pair, err = s.issue(ctx, tx, u, now)
		return err
	})
	if err != nil {
		return TokenPair{}, err
	}
	s.Metrics.TokenRefreshed()
	return pair, nil
}

// issue signs an access token and persists a new refresh token.
func (s *TokenService) issue(ctx context.Context, tx store.Store, u domain.User, now time.Time) (TokenPair, error) {
	claims := jwtx.NewAccessClaims(u.ID, u.Username, []string{ScopeAPI}, s.AccessTTL, s.Issuer, now)
	access, err := s.KeyManager.GetSigner().Sign(claims)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return TokenPair{}, err
	}
	rt := domain.RefreshToken{
		ID:        idx.NewString(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(refresh),
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: s.AccessTTL}, nil
}
