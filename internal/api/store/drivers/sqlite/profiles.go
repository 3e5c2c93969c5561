package sqlite

import (
	"context"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
)

type profilesRepo struct {
	q dbtx
}

const profileSelect = `SELECT p.id, p.user_id, u.username, p.mobile_number, p.verified_number, p.enable_2fa, p.totp_secret
	FROM profiles p JOIN users u ON u.id = p.user_id`

func scanProfile(s scanner) (domain.Profile, error) {
	var p domain.Profile
	err := s.Scan(&p.ID, &p.UserID, &p.Username, &p.MobileNumber, &p.VerifiedNumber, &p.Enable2FA, &p.TOTPSecret)
	return p, err
}

// loadLinks fills the tenant and role sets.
func (r *profilesRepo) loadLinks(ctx context.Context, p *domain.Profile) error {
	var err error
	p.TenantIDs, err = listIDs(ctx, r.q,
		`SELECT tenant_id FROM profile_tenants WHERE profile_id = ? ORDER BY tenant_id`, p.ID)
	if err != nil {
		return err
	}
	p.RoleIDs, err = listIDs(ctx, r.q,
		`SELECT role_id FROM profile_roles WHERE profile_id = ? ORDER BY role_id`, p.ID)
	return err
}

func (r *profilesRepo) get(ctx context.Context, where string, arg any) (domain.Profile, error) {
	p, err := scanProfile(r.q.QueryRowContext(ctx, profileSelect+` WHERE `+where, arg))
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	if err := r.loadLinks(ctx, &p); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

func (r *profilesRepo) GetProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	return r.get(ctx, `p.id = ?`, id)
}

func (r *profilesRepo) GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	return r.get(ctx, `p.user_id = ?`, userID)
}

func (r *profilesRepo) list(ctx context.Context, query string, args ...any) ([]domain.Profile, error) {
	out, err := queryList(ctx, r.q, scanProfile, query, args...)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadLinks(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *profilesRepo) ListProfiles(ctx context.Context, tenantIDs []string, userID string) ([]domain.Profile, error) {
	if len(tenantIDs) == 0 {
		return r.list(ctx, profileSelect+` WHERE p.user_id = ? ORDER BY u.username`, userID)
	}
	in, args := inClause(tenantIDs)
	args = append(args, userID)
	return r.list(ctx, profileSelect+`
		WHERE p.id IN (SELECT profile_id FROM profile_tenants WHERE tenant_id IN (`+in+`))
		   OR p.user_id = ?
		ORDER BY u.username`, args...)
}

func (r *profilesRepo) ListAllProfiles(ctx context.Context) ([]domain.Profile, error) {
	return r.list(ctx, profileSelect+` ORDER BY u.username`)
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO profiles (id, user_id, mobile_number, verified_number, enable_2fa, totp_secret)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.MobileNumber, p.VerifiedNumber, p.Enable2FA, p.TOTPSecret,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return r.writeLinks(ctx, p)
}

func (r *profilesRepo) UpdateProfile(ctx context.Context, p domain.Profile) error {
	err := requireAffected(r.q.ExecContext(ctx,
		`UPDATE profiles SET mobile_number = ?, verified_number = ?, enable_2fa = ?, totp_secret = ?
		 WHERE id = ?`,
		p.MobileNumber, p.VerifiedNumber, p.Enable2FA, p.TOTPSecret, p.ID,
	))
	if err != nil {
		return err
	}
	return r.writeLinks(ctx, p)
}

func (r *profilesRepo) writeLinks(ctx context.Context, p domain.Profile) error {
	if err := replaceLinks(ctx, r.q, "profile_tenants", "profile_id", "tenant_id", p.ID, p.TenantIDs); err != nil {
		return err
	}
	return replaceLinks(ctx, r.q, "profile_roles", "profile_id", "role_id", p.ID, p.RoleIDs)
}

func (r *profilesRepo) DeleteProfile(ctx context.Context, id string) error {
	return requireAffected(r.q.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id))
}
