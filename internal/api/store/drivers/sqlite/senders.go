package sqlite

import (
	"context"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
)

type sendersRepo struct {
	q dbtx
}

const senderSelect = `SELECT id, tenant_id, name, email, mobile_number, email_verified, mobile_verified,
	verification_key, ` + auditColumns + ` FROM senders`

func scanSender(s scanner) (domain.Sender, error) {
	var x domain.Sender
	dest := []any{&x.ID, &x.TenantID, &x.Name, &x.Email, &x.MobileNumber, &x.EmailVerified,
		&x.MobileVerified, &x.VerificationKey}
	err := s.Scan(append(dest, auditDest(&x.Audit)...)...)
	return x, err
}

func (r *sendersRepo) GetSender(ctx context.Context, id string) (domain.Sender, error) {
	s, err := scanSender(r.q.QueryRowContext(ctx, senderSelect+` WHERE id = ?`, id))
	if err != nil {
		return domain.Sender{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sendersRepo) ListSenders(ctx context.Context, tenantIDs []string) ([]domain.Sender, error) {
	where, args, ok := tenantFilter(tenantIDs)
	if !ok {
		return []domain.Sender{}, nil
	}
	return queryList(ctx, r.q, scanSender, senderSelect+where+` ORDER BY created_at DESC, id DESC`, args...)
}

func (r *sendersRepo) CreateSender(ctx context.Context, s domain.Sender) error {
	args := []any{s.ID, s.TenantID, s.Name, s.Email, s.MobileNumber, s.EmailVerified, s.MobileVerified, s.VerificationKey}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO senders (id, tenant_id, name, email, mobile_number, email_verified, mobile_verified,
		 verification_key, `+auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append(args, auditArgs(s.Audit)...)...,
	)
	return mapConstraint(err)
}

// UpdateSender leaves verification_key untouched; it is fixed at creation.
func (r *sendersRepo) UpdateSender(ctx context.Context, s domain.Sender) error {
	return requireAffected(r.q.ExecContext(ctx,
		`UPDATE senders SET name = ?, email = ?, mobile_number = ?, email_verified = ?, mobile_verified = ?,
		 modified_at = ?, modified_by = ? WHERE id = ?`,
		s.Name, s.Email, s.MobileNumber, s.EmailVerified, s.MobileVerified,
		s.ModifiedAt.UTC(), s.ModifiedBy, s.ID,
	))
}

func (r *sendersRepo) DeleteSender(ctx context.Context, id string) error {
	return requireAffected(r.q.ExecContext(ctx, `DELETE FROM senders WHERE id = ?`, id))
}
