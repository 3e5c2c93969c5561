package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDomainService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	staff := e.user(t, "root", true, e.tenantA.ID)
	member := e.user(t, "member", false, e.tenantA.ID)
	svc := &DomainService{Base: e.base}
	inA := domain.Owned{TenantID: e.tenantA.ID}

	_, err := svc.Create(ctx, member, domain.Domain{Name: "mail.acme.test", Verified: true, Owned: inA})
	require.ErrorIs(t, err, ErrPermissionDenied)

	d, err := svc.Create(ctx, member, domain.Domain{Name: " Mail.Acme.TEST ", Owned: inA})
	require.NoError(t, err)
	require.Equal(t, "mail.acme.test", d.Name)

	_, err = svc.Create(ctx, member, domain.Domain{Name: "localhost", Owned: inA})
	requireField(t, err, "name", "")

	_, err = svc.Update(ctx, member, d.ID, func(d *domain.Domain) error {
		d.Verified = true
		return nil
	})
	require.ErrorIs(t, err, ErrPermissionDenied)

	got, err := svc.Update(ctx, staff, d.ID, func(d *domain.Domain) error {
		d.Verified = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, got.Verified)

	got, err = svc.Update(ctx, member, d.ID, func(d *domain.Domain) error { return nil })
	require.NoError(t, err)
	require.True(t, got.Verified)
}

func TestSenderService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ident := e.user(t, "member", false, e.tenantA.ID)
	svc := &SenderService{Base: e.base}

	x, err := svc.Create(ctx, ident, domain.Sender{
		Name: "Acme News", Email: "news@acme.test", EmailVerified: true,
		Owned: domain.Owned{TenantID: e.tenantA.ID},
	})
	require.NoError(t, err)
	require.False(t, x.EmailVerified)
	_, err = uuid.Parse(x.VerificationKey)
	require.NoError(t, err)
	require.Equal(t, "Acme News <news@acme.test>", domain.FormattedEmail(x))

	got, err := svc.Update(ctx, ident, x.ID, func(s *domain.Sender) error {
		s.Name = "Acme Updates"
		s.VerificationKey = "forged"
		s.MobileVerified = true
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, x.VerificationKey, got.VerificationKey)
	require.False(t, got.MobileVerified)

	stored, err := svc.Get(ctx, ident, x.ID)
	require.NoError(t, err)
	require.Equal(t, x.VerificationKey, stored.VerificationKey)

	_, err = svc.Create(ctx, ident, domain.Sender{
		Name: "Bad", Email: "Acme <news@acme.test>", Owned: domain.Owned{TenantID: e.tenantA.ID},
	})
	requireField(t, err, "email", "")
}

func TestTenantService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	staff := e.user(t, "root", true)
	member := e.user(t, "member", false, e.tenantA.ID)
	svc := &TenantService{Base: e.base}

	all, err := svc.List(ctx, staff)
	require.NoError(t, err)
	require.Len(t, all, 2)

	mine, err := svc.List(ctx, member)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, e.tenantA.ID, mine[0].ID)

	_, err = svc.Get(ctx, member, e.tenantB.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, member, domain.Tenant{Name: "Initech"})
	require.ErrorIs(t, err, ErrPermissionDenied)

	tn, err := svc.Create(ctx, staff, domain.Tenant{Name: "Initech"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, staff, domain.Tenant{Name: ""})
	requireField(t, err, "name", MsgRequired)

	require.NoError(t, svc.Delete(ctx, staff, tn.ID))
	_, err = svc.Get(ctx, staff, tn.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	staff := e.user(t, "root", true)
	member := e.user(t, "member", false, e.tenantA.ID)
	svc := &UserService{Base: e.base}

	_, err := svc.List(ctx, member)
	require.ErrorIs(t, err, ErrPermissionDenied)

	u, generated, err := svc.Create(ctx, staff, "new.user@acme", "", false)
	require.NoError(t, err)
	require.NotEmpty(t, generated)
	require.True(t, u.IsActive)

	_, _, err = svc.Create(ctx, staff, "new.user@acme", "password123", false)
	requireField(t, err, "username", "")

	_, _, err = svc.Create(ctx, staff, "bad name", "password123", false)
	requireField(t, err, "username", "")

	_, _, err = svc.Create(ctx, staff, "shorty", "short", false)
	requireField(t, err, "password", "")

	var ve *ValidationError
	require.ErrorAs(t, svc.Delete(ctx, staff, staff.UserID), &ve)

	require.NoError(t, svc.Delete(ctx, staff, u.ID))
	_, err = svc.Get(ctx, staff, u.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBootstrapService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	svc := &BootstrapService{Base: e.base, Token: "s3cret"}

	done, err := svc.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, done)

	_, err = svc.Bootstrap(ctx, "wrong", "admin", "password123")
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)

	_, err = svc.Bootstrap(ctx, "s3cret", "admin", "")
	requireField(t, err, "password", MsgRequired)

	u, err := svc.Bootstrap(ctx, "s3cret", "admin", "password123")
	require.NoError(t, err)
	require.True(t, u.IsStaff)

	_, err = svc.Bootstrap(ctx, "s3cret", "admin2", "password123")
	require.ErrorIs(t, err, ErrBootstrapAlready)

	t.Run("disabled without a token", func(t *testing.T) {
		e := newEnv(t)
		svc := &BootstrapService{Base: e.base}
		_, err := svc.Bootstrap(ctx, "", "admin", "password123")
		require.ErrorIs(t, err, ErrBootstrapUnauthorized)
	})
}

func TestStorageCredentialService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ident := e.user(t, "ops", false, e.tenantA.ID, e.tenantB.ID)
	svc := &StorageCredentialService{Base: e.base}

	c, err := svc.Create(ctx, ident, domain.StorageCredential{
		Name: "archive", SType: domain.StorageAWSS3, AccessKeyID: "AKIA", SecretAccessKey: "shh",
		Bucket: "archive", Region: "ap-southeast-2", Owned: domain.Owned{TenantID: e.tenantA.ID},
	})
	require.NoError(t, err)
	require.True(t, c.HasSecret())

	_, err = svc.Create(ctx, ident, domain.StorageCredential{
		Name: "archive", SType: domain.StorageBasicAuthURL, Owned: domain.Owned{TenantID: e.tenantB.ID},
	})
	requireField(t, err, "name", msgCredentialExists)

	_, err = svc.Create(ctx, ident, domain.StorageCredential{
		Name: "bad", SType: "FTP", Endpoint: "not a url", Owned: domain.Owned{TenantID: e.tenantA.ID},
	})
	requireField(t, err, "stype", "")
	requireField(t, err, "endpoint", "")

	got, err := svc.Update(ctx, ident, c.ID, func(c *domain.StorageCredential) error {
		c.Region = "us-east-1"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "shh", got.SecretAccessKey)
	require.Equal(t, "us-east-1", got.Region)
}

func TestRoleService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ident := e.user(t, "admin", false, e.tenantA.ID)
	svc := &RoleService{Base: e.base}
	inA := domain.Owned{TenantID: e.tenantA.ID}

	_, err := svc.Create(ctx, ident, domain.Role{Role: domain.RoleAdmin, Owned: inA})
	require.NoError(t, err)

	_, err = svc.Create(ctx, ident, domain.Role{Role: domain.RoleAdmin, Owned: inA})
	requireField(t, err, "role", msgRoleExists)

	_, err = svc.Create(ctx, ident, domain.Role{Role: "superuser", Owned: inA})
	requireField(t, err, "role", "")

	list, err := svc.List(ctx, ident)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
