package domain

// ChannelType is the delivery channel of a broadcast or ledger entry.
type ChannelType string

const (
	ChannelEmail ChannelType = "EMAIL"
	ChannelSMS   ChannelType = "SMS"
)

func (c ChannelType) Valid() bool { return c == ChannelEmail || c == ChannelSMS }

// RoleName is the closed set of per-tenant roles.
type RoleName string

const (
	RoleAdmin          RoleName = "admin"
	RoleTemplateEditor RoleName = "template_editor"
)

func (r RoleName) Valid() bool { return r == RoleAdmin || r == RoleTemplateEditor }

// StorageType discriminates storage credentials.
type StorageType string

const (
	StorageAWSS3        StorageType = "AWS_S3"
	StorageBasicAuthURL StorageType = "BASIC_AUTH_URL"
)

func (s StorageType) Valid() bool { return s == StorageAWSS3 || s == StorageBasicAuthURL }

// AttachmentSource says where an attachment's content comes from.
type AttachmentSource string

const (
	SourceURL     AttachmentSource = "URL"
	SourceStorage AttachmentSource = "STORAGE"
	SourceUpload  AttachmentSource = "UPLOAD"
)

func (s AttachmentSource) Valid() bool {
	return s == SourceURL || s == SourceStorage || s == SourceUpload
}

// AttachmentNaming says how an attachment's delivered filename is chosen.
type AttachmentNaming string

const (
	NamingURLParam           AttachmentNaming = "URL_PARAM"
	NamingContentDisposition AttachmentNaming = "CONTENT_DISPOSITION"
	NamingSpecified          AttachmentNaming = "SPECIFIED"
)

func (n AttachmentNaming) Valid() bool {
	return n == NamingURLParam || n == NamingContentDisposition || n == NamingSpecified
}

// BroadcastStatus is the lifecycle state of a broadcast. Only drafts exist.
type BroadcastStatus string

const BroadcastDraft BroadcastStatus = "draft"

func (s BroadcastStatus) Valid() bool { return s == BroadcastDraft }

// OriginType is what produced a ledger entry.
type OriginType string

const OriginPayment OriginType = "PAYMENT"

func (o OriginType) Valid() bool { return o == OriginPayment }
