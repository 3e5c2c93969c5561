package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store/drivers/sqlite"
	"github.com/aussiebroadwan/dds2/pkg/cryptox"
	"github.com/aussiebroadwan/dds2/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cryptox.SetPepper("test-pepper")
	os.Exit(m.Run())
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// env is a migrated in-memory store with two tenants.
type env struct {
	base    Base
	tenantA domain.Tenant
	tenantB domain.Tenant
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st, err := sqlite.NewStore(sqlite.MemoryDSN)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	e := &env{base: Base{Store: st, Clock: func() time.Time { return fixedNow }}}
	e.tenantA = e.tenant(t, "Acme")
	e.tenantB = e.tenant(t, "Globex")
	return e
}

func (e *env) tenant(t *testing.T, name string) domain.Tenant {
	t.Helper()
	tn := domain.Tenant{ID: idx.NewString(), Name: name, Audit: domain.Audit{CreatedAt: fixedNow, ModifiedAt: fixedNow}}
	require.NoError(t, e.base.Store.Tenants().CreateTenant(context.Background(), tn))
	return tn
}

// user creates a user with a profile in tenants and returns its identity.
func (e *env) user(t *testing.T, username string, staff bool, tenants ...string) Identity {
	t.Helper()
	ctx := context.Background()
	u, _, err := newUser(username, "password123", staff, fixedNow)
	require.NoError(t, err)
	require.NoError(t, e.base.Store.Users().CreateUser(ctx, u))
	require.NoError(t, e.base.Store.Profiles().CreateProfile(ctx, domain.Profile{
		ID: idx.NewString(), UserID: u.ID, TenantIDs: tenants,
	}))

	ident, err := (&TenantResolver{Store: e.base.Store}).Identify(ctx, u.ID)
	require.NoError(t, err)
	return ident
}

func requireField(t *testing.T, err error, field, msg string) {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Fields, field)
	if msg != "" {
		require.Equal(t, msg, ve.Fields[field])
	}
}
