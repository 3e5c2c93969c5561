package apisdk

import "time"

// Ptr returns a pointer to v, for filling *Input structs.
func Ptr[T any](v T) *T { return &v }

// Audit is embedded in every tenant-owned representation.
type Audit struct {
	CreatedOn  time.Time `json:"created_on"`
	ModifiedOn time.Time `json:"modified_on"`
	CreatedBy  string    `json:"created_by"`
	ModifiedBy string    `json:"modified_by"`
}

// ============================================================================
// Tokens and bootstrap
// ============================================================================

// TokenRequest is the body of POST /api/token/.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// OTP is the current TOTP code, required once 2FA is enabled.
	OTP string `json:"otp,omitempty"`
}

// RefreshRequest is the body of POST /api/token/refresh/.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenResponse is returned by both token endpoints.
type TokenResponse struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

// BootstrapRequest creates the first staff user.
type BootstrapRequest struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ============================================================================
// Users and profiles
// ============================================================================

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IsStaff   bool      `json:"is_staff"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserInput creates a user. An empty password asks the server to generate one.
type UserInput struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	IsStaff  *bool   `json:"is_staff,omitempty"`
}

// UserCreated carries the generated password, shown only once.
type UserCreated struct {
	User
	Password string `json:"password,omitempty"`
}

type Profile struct {
	ID             string   `json:"id"`
	User           string   `json:"user"`
	Username       string   `json:"username"`
	MobileNumber   string   `json:"mobile_number"`
	VerifiedNumber bool     `json:"verified_number"`
	Enable2FA      bool     `json:"enable_2fa"`
	Tenants        []string `json:"tenants"`
	Roles          []string `json:"roles"`
}

type ProfileInput struct {
	User         *string   `json:"user,omitempty"`
	MobileNumber *string   `json:"mobile_number,omitempty"`
	Tenants      *[]string `json:"tenants,omitempty"`
	Roles        *[]string `json:"roles,omitempty"`
}

// TOTPEnrollResponse carries a fresh secret for the authenticator app.
type TOTPEnrollResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

// TOTPCodeRequest confirms or disables 2FA.
type TOTPCodeRequest struct {
	Code string `json:"code"`
}

// ============================================================================
// Tenants and tenant-owned resources
// ============================================================================

type Tenant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Audit
}

type TenantInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type Role struct {
	ID     string `json:"id"`
	Tenant string `json:"tenant"`
	Role   string `json:"role"`
	Audit
}

type RoleInput struct {
	Tenant *string `json:"tenant,omitempty"`
	Role   *string `json:"role,omitempty"`
}

type Tag struct {
	ID     string `json:"id"`
	Tenant string `json:"tenant"`
	Tag    string `json:"tag"`
	Slug   string `json:"slug"`
	Audit
}

type TagInput struct {
	Tenant *string `json:"tenant,omitempty"`
	Tag    *string `json:"tag,omitempty"`
}

// StorageCredential never carries its keys; HasSecret reports whether a
// secret access key is stored.
type StorageCredential struct {
	ID        string `json:"id"`
	Tenant    string `json:"tenant"`
	Name      string `json:"name"`
	SType     string `json:"stype"`
	Endpoint  string `json:"endpoint"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	HasSecret bool   `json:"has_secret"`
	Audit
}

type StorageCredentialInput struct {
	Tenant          *string `json:"tenant,omitempty"`
	Name            *string `json:"name,omitempty"`
	SType           *string `json:"stype,omitempty"`
	AccessKeyID     *string `json:"access_key_id,omitempty"`
	SecretAccessKey *string `json:"secret_access_key,omitempty"`
	Endpoint        *string `json:"endpoint,omitempty"`
	Bucket          *string `json:"bucket,omitempty"`
	Region          *string `json:"region,omitempty"`
}

type Domain struct {
	ID       string `json:"id"`
	Tenant   string `json:"tenant"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
	Audit
}

type DomainInput struct {
	Tenant   *string `json:"tenant,omitempty"`
	Name     *string `json:"name,omitempty"`
	Verified *bool   `json:"verified,omitempty"`
}

type Sender struct {
	ID              string `json:"id"`
	Tenant          string `json:"tenant"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	MobileNumber    string `json:"mobile_number"`
	EmailVerified   bool   `json:"email_verified"`
	MobileVerified  bool   `json:"mobile_verified"`
	VerificationKey string `json:"verification_key"`
	FormattedEmail  string `json:"formatted_email"`
	Audit
}

type SenderInput struct {
	Tenant       *string `json:"tenant,omitempty"`
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	MobileNumber *string `json:"mobile_number,omitempty"`
}

type Attachment struct {
	ID                string  `json:"id"`
	Tenant            string  `json:"tenant"`
	Description       string  `json:"description"`
	Source            string  `json:"source"`
	URL               string  `json:"url"`
	StorageKey        string  `json:"storage_key"`
	StorageCredential *string `json:"storage_credential"`
	Naming            string  `json:"naming"`
	URLParam          string  `json:"url_param"`
	FilenameTemplate  string  `json:"filename_template"`
	Unzip             bool    `json:"unzip"`
	OriginalFilename  string  `json:"original_filename"`
	Audit
}

type AttachmentInput struct {
	Tenant            *string `json:"tenant,omitempty"`
	Description       *string `json:"description,omitempty"`
	Source            *string `json:"source,omitempty"`
	URL               *string `json:"url,omitempty"`
	StorageKey        *string `json:"storage_key,omitempty"`
	StorageCredential *string `json:"storage_credential,omitempty"`
	Naming            *string `json:"naming,omitempty"`
	URLParam          *string `json:"url_param,omitempty"`
	FilenameTemplate  *string `json:"filename_template,omitempty"`
	Unzip             *bool   `json:"unzip,omitempty"`
}

type Broadcast struct {
	ID                string   `json:"id"`
	Tenant            string   `json:"tenant"`
	Name              string   `json:"name"`
	ChannelType       string   `json:"channel_type"`
	Domain            *string  `json:"domain"`
	Sender            *string  `json:"sender"`
	StorageCredential *string  `json:"storage_credential"`
	Status            string   `json:"status"`
	Tags              []string `json:"tags"`
	Attachments       []string `json:"attachments"`
	EmailSubject      string   `json:"email_subject"`
	EmailBody         string   `json:"email_body"`
	Audit
}

type BroadcastInput struct {
	Tenant            *string   `json:"tenant,omitempty"`
	Name              *string   `json:"name,omitempty"`
	ChannelType       *string   `json:"channel_type,omitempty"`
	Domain            *string   `json:"domain,omitempty"`
	Sender            *string   `json:"sender,omitempty"`
	StorageCredential *string   `json:"storage_credential,omitempty"`
	Status            *string   `json:"status,omitempty"`
	Tags              *[]string `json:"tags,omitempty"`
	Attachments       *[]string `json:"attachments,omitempty"`
	EmailSubject      *string   `json:"email_subject,omitempty"`
	EmailBody         *string   `json:"email_body,omitempty"`
}

type DataSet struct {
	ID               string   `json:"id"`
	Tenant           string   `json:"tenant"`
	Name             string   `json:"name"`
	Encoding         string   `json:"encoding"`
	Delimiter        string   `json:"delimiter"`
	Quotechar        string   `json:"quotechar"`
	HasHeader        bool     `json:"has_header"`
	Fields           []string `json:"fields"`
	OriginalFilename string   `json:"original_filename"`
	Audit
}

type DataSetInput struct {
	Tenant    *string   `json:"tenant,omitempty"`
	Name      *string   `json:"name,omitempty"`
	Encoding  *string   `json:"encoding,omitempty"`
	Delimiter *string   `json:"delimiter,omitempty"`
	Quotechar *string   `json:"quotechar,omitempty"`
	HasHeader *bool     `json:"has_header,omitempty"`
	Fields    *[]string `json:"fields,omitempty"`
}

type BalanceEntry struct {
	ID          string  `json:"id"`
	Tenant      string  `json:"tenant"`
	ChannelType string  `json:"channel_type"`
	Qty         float64 `json:"qty"`
	Balance     float64 `json:"balance"`
	OriginType  string  `json:"origin_type"`
	OriginID    string  `json:"origin_id"`
	Audit
}

// BalanceEntryInput appends to the ledger. Balance is optional; when given it
// must equal the previous balance plus Qty.
type BalanceEntryInput struct {
	Tenant      *string  `json:"tenant,omitempty"`
	ChannelType *string  `json:"channel_type,omitempty"`
	Qty         *float64 `json:"qty,omitempty"`
	Balance     *float64 `json:"balance,omitempty"`
	OriginType  *string  `json:"origin_type,omitempty"`
	OriginID    *string  `json:"origin_id,omitempty"`
}
