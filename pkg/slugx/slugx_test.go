package slugx_test

import (
	"testing"

	"github.com/aussiebroadwan/dds2/pkg/slugx"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Big Sale", "big-sale"},
		{"big sale", "big-sale"},
		{"  Big   Sale!! ", "big-sale"},
		{"Café Déjà vu", "cafe-deja-vu"},
		{"already-a-slug", "already-a-slug"},
		{"under_score", "under_score"},
		{"--trim--", "trim"},
		{"_lead_", "lead"},
		{"a - b", "a-b"},
		{"ﬁne", "fine"},
		{"日本", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, slugx.Make(tt.in))
		})
	}
}

func TestMake_Idempotent(t *testing.T) {
	for _, s := range []string{"Big Sale", "Café Déjà vu", "x__y--z"} {
		once := slugx.Make(s)
		require.Equal(t, once, slugx.Make(once))
	}
}
