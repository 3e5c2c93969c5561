package service

import (
	"context"
	"net/mail"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/idx"
	"github.com/google/uuid"
)

type SenderService struct {
	Base
}

func (s *SenderService) List(ctx context.Context, ident Identity) ([]domain.Sender, error) {
	return s.Store.Senders().ListSenders(ctx, ident.TenantIDs())
}

func (s *SenderService) Get(ctx context.Context, ident Identity, id string) (domain.Sender, error) {
	return getVisible(ctx, ident, s.Store.Senders().GetSender, id)
}

// Create stores a sender with a fresh verification key. Verification flags
// start false.
func (s *SenderService) Create(ctx context.Context, ident Identity, x domain.Sender) (domain.Sender, error) {
	if err := ident.Writable(x.TenantID); err != nil {
		return domain.Sender{}, err
	}
	if err := validateSender(x); err != nil {
		return domain.Sender{}, err
	}
	x.ID = idx.NewString()
	x.VerificationKey = uuid.NewString()
	x.EmailVerified, x.MobileVerified = false, false
	stampCreate(&x.Audit, ident.UserID, s.now())
	if err := s.Store.Senders().CreateSender(ctx, x); err != nil {
		return domain.Sender{}, mapStoreErr(err, "email", "sender already exists")
	}
	return x, nil
}

func (s *SenderService) Update(ctx context.Context, ident Identity, id string, apply func(*domain.Sender) error) (domain.Sender, error) {
	var out domain.Sender
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		before, err := getVisible(ctx, ident, tx.Senders().GetSender, id)
		if err != nil {
			return err
		}
		x := before
		if err := apply(&x); err != nil {
			return err
		}
		x.ID, x.Audit = before.ID, before.Audit
		x.VerificationKey = before.VerificationKey
		x.EmailVerified, x.MobileVerified = before.EmailVerified, before.MobileVerified
		if err := checkTenantUnchanged(before.TenantID, x.TenantID); err != nil {
			return err
		}
		if err := validateSender(x); err != nil {
			return err
		}
		stampUpdate(&x.Audit, ident.UserID, s.now())
		if err := tx.Senders().UpdateSender(ctx, x); err != nil {
			return mapStoreErr(err, "email", "sender already exists")
		}
		out = x
		return nil
	})
	return out, err
}

func (s *SenderService) Delete(ctx context.Context, ident Identity, id string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := getVisible(ctx, ident, tx.Senders().GetSender, id); err != nil {
			return err
		}
		return mapStoreErr(tx.Senders().DeleteSender(ctx, id), "", "")
	})
}

func validateSender(x domain.Sender) error {
	var v validator
	v.length(x.Name, 128, "name")
	v.required(x.Email, "email")
	v.maxLen(x.Email, 254, "email")
	if x.Email != "" {
		v.check(isEmail(x.Email), "email", "Enter a valid email address.")
	}
	v.maxLen(x.MobileNumber, 20, "mobile_number")
	return v.err()
}

// isEmail accepts a bare address, not a "Name <addr>" form.
func isEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s && a.Name == ""
}
