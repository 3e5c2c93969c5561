package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// TOTPEnrollment is a fresh secret awaiting confirmation.
type TOTPEnrollment struct {
	Secret string
	URL    string
}

// MFAService manages TOTP two-factor authentication on a caller's own
// profile.
type MFAService struct {
	Base
	Issuer string // shown in authenticator apps
}

// Enroll stores a new secret. 2FA stays off until Verify confirms a code.
func (s *MFAService) Enroll(ctx context.Context, ident Identity, profileID string) (TOTPEnrollment, error) {
	var out TOTPEnrollment
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := ownProfile(ctx, tx, ident, profileID)
		if err != nil {
			return err
		}
		if p.Enable2FA {
			return FieldError("enable_2fa", "Two-factor authentication is already enabled.")
		}

		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      s.Issuer,
			AccountName: ident.Username,
			Period:      totpOpts.Period,
			Digits:      totpOpts.Digits,
			Algorithm:   totpOpts.Algorithm,
		})
		if err != nil {
			return fmt.Errorf("failed to generate TOTP key: %w", err)
		}

		p.TOTPSecret = key.Secret()
		if err := tx.Profiles().UpdateProfile(ctx, p); err != nil {
			return err
		}
		out = TOTPEnrollment{Secret: key.Secret(), URL: key.URL()}
		return nil
	})
	return out, err
}

// Verify confirms an enrolled secret with a current code and turns 2FA on.
func (s *MFAService) Verify(ctx context.Context, ident Identity, profileID, code string) (domain.Profile, error) {
	var out domain.Profile
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := ownProfile(ctx, tx, ident, profileID)
		if err != nil {
			return err
		}
		if p.TOTPSecret == "" {
			return FieldError("code", "Enroll an authenticator first.")
		}
		if !validTOTP(code, p.TOTPSecret, s.now()) {
			return FieldError("code", "Invalid code.")
		}
		p.Enable2FA = true
		if err := tx.Profiles().UpdateProfile(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// Disable turns 2FA off after checking a current code.
func (s *MFAService) Disable(ctx context.Context, ident Identity, profileID, code string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := ownProfile(ctx, tx, ident, profileID)
		if err != nil {
			return err
		}
		if !p.Enable2FA {
			return FieldError("enable_2fa", "Two-factor authentication is not enabled.")
		}
		if !validTOTP(code, p.TOTPSecret, s.now()) {
			return FieldError("code", "Invalid code.")
		}
		p.Enable2FA, p.TOTPSecret = false, ""
		return tx.Profiles().UpdateProfile(ctx, p)
	})
}

// ownProfile loads a visible profile and requires it to be the caller's.
func ownProfile(ctx context.Context, tx store.Store, ident Identity, id string) (domain.Profile, error) {
	p, err := loadProfile(ctx, tx, ident, id)
	if err != nil {
		return domain.Profile{}, err
	}
	if p.UserID != ident.UserID {
		return domain.Profile{}, ErrPermissionDenied
	}
	return p, nil
}

func validTOTP(code, secret string, now time.Time) bool {
	if code == "" || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, now, totpOpts)
	return err == nil && ok
}
