package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/dds2/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewAccessClaims(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c := jwtx.NewAccessClaims("user-1", "alice", []string{"api"}, 15*time.Minute, "dds", now)

	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "alice", c.Username)
	require.Equal(t, "dds", c.Issuer)
	require.Equal(t, jwtx.TokenUseAccess, c.TokenUse)
	require.Equal(t, now.Add(15*time.Minute), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)
	require.True(t, c.HasScope("api"))
	require.False(t, c.HasScope("admin"))
}

func TestNewJTI_Unique(t *testing.T) {
	require.NotEqual(t, jwtx.NewJTI(), jwtx.NewJTI())
}

func TestValidateIssuer(t *testing.T) {
	c := jwtx.NewAccessClaims("u", "", nil, time.Minute, "dds", time.Now())

	require.NoError(t, c.ValidateIssuer("dds"))
	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("other"), jwtx.ErrIssuer)
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()
	c := jwtx.NewAccessClaims("u", "", nil, time.Minute, "dds", now)

	tests := []struct {
		name    string
		at      time.Time
		leeway  time.Duration
		wantErr error
	}{
		{"within lifetime", now.Add(30 * time.Second), 0, nil},
		{"expired", now.Add(2 * time.Minute), 0, jwtx.ErrExpired},
		{"expired but within leeway", now.Add(61 * time.Second), 5 * time.Second, nil},
		{"before nbf", now.Add(-time.Minute), 0, jwtx.ErrNotYetValid},
		{"before nbf within leeway", now.Add(-time.Second), 5 * time.Second, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.ValidateExpiry(tt.at, tt.leeway)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
