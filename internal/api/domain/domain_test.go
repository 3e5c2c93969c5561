package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormattedEmail(t *testing.T) {
	s := Sender{Name: "Acme Marketing", Email: "news@acme.test"}
	require.Equal(t, "Acme Marketing <news@acme.test>", FormattedEmail(s))
}

func TestStorageCredential_HasSecret(t *testing.T) {
	require.False(t, StorageCredential{}.HasSecret())
	require.True(t, StorageCredential{SecretAccessKey: "s"}.HasSecret())
}

func TestChoices(t *testing.T) {
	require.True(t, ChannelEmail.Valid())
	require.False(t, ChannelType("FAX").Valid())
	require.True(t, RoleTemplateEditor.Valid())
	require.False(t, RoleName("owner").Valid())
	require.True(t, StorageBasicAuthURL.Valid())
	require.True(t, SourceUpload.Valid())
	require.True(t, NamingSpecified.Valid())
	require.False(t, BroadcastStatus("sent").Valid())
	require.True(t, OriginPayment.Valid())
}

func TestDataSetFilename(t *testing.T) {
	name, err := DataSetFilename(DataSet{File: DataSetKey("t", "d", "u", "contacts.csv")})
	require.NoError(t, err)
	require.Equal(t, "contacts.csv", name)
}
