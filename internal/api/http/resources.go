package http

import (
	"context"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/service"
	"github.com/aussiebroadwan/dds2/pkg/apisdk"
)

func renderAudit(a domain.Audit) apisdk.Audit {
	return apisdk.Audit{
		CreatedOn:  a.CreatedAt,
		ModifiedOn: a.ModifiedAt,
		CreatedBy:  a.CreatedBy,
		ModifiedBy: a.ModifiedBy,
	}
}

// optional renders an empty reference as JSON null.
func optional(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ============================================================================
// Tenants, roles and profiles
// ============================================================================

func tenantResource(s *service.TenantService) resource[domain.Tenant, apisdk.TenantInput] {
	return resource[domain.Tenant, apisdk.TenantInput]{
		List: s.List, Get: s.Get, Create: s.Create, Update: s.Update, Delete: s.Delete,
		Bind: func(in apisdk.TenantInput, t *domain.Tenant, full bool) error {
			b := binder{full: full}
			bind(&b, "name", &t.Name, in.Name, true)
			bind(&b, "description", &t.Description, in.Description, false)
			return b.err()
		},
		Render: func(t domain.Tenant) (any, error) {
			return apisdk.Tenant{ID: t.ID, Name: t.Name, Description: t.Description, Audit: renderAudit(t.Audit)}, nil
		},
	}
}

func roleResource(s *service.RoleService) resource[domain.Role, apisdk.RoleInput] {
	return resource[domain.Role, apisdk.RoleInput]{
		List: s.List, Get: s.Get, Create: s.Create, Update: s.Update, Delete: s.Delete,
		Bind: func(in apisdk.RoleInput, r *domain.Role, full bool) error {
			b := binder{full: full}
			bind(&b, "tenant", &r.TenantID, in.Tenant, true)
			bindChoice(&b, "role", &r.Role, in.Role, true)
			return b.err()
		},
		Render: func(r domain.Role) (any, error) {
			return apisdk.Role{ID: r.ID, Tenant: r.TenantID, Role: string(r.Role), Audit: renderAudit(r.Audit)}, nil
		},
	}
}

func profileResource(s *service.ProfileService) resource[domain.Profile, apisdk.ProfileInput] {
	return resource[domain.Profile, apisdk.ProfileInput]{
		List: s.List, Get: s.Get, Create: s.Create, Update: s.Update, Delete: s.Delete,
		Bind: func(in apisdk.ProfileInput, p *domain.Profile, full bool) error {
			b := binder{full: full}
			bind(&b, "user", &p.UserID, in.User, p.ID == "")
			bind(&b, "mobile_number", &p.MobileNumber, in.MobileNumber, false)
			bind(&b, "tenants", &p.TenantIDs, in.Tenants, false)
			bind(&b, "roles", &p.RoleIDs, in.Roles, false)
			return b.err()
		},
		Render: func(p domain.Profile) (any, error) { return renderProfile(p), nil },
	}
}

func renderProfile(p domain.Profile) apisdk.Profile {
	return apisdk.Profile{
		ID:             p.ID,
		User:           p.UserID,
		Username:       p.Username,
		MobileNumber:   p.MobileNumber,
		VerifiedNumber: p.VerifiedNumber,
		Enable2FA:      p.Enable2FA,
		Tenants:        orEmpty(p.TenantIDs),
		Roles:          orEmpty(p.RoleIDs),
	}
}

// ============================================================================
// Tenant-owned resources
// ============================================================================

func tagResource(s *service.TagService) resource[domain.Tag, apisdk.TagInput] {
	return resource[domain.Tag, apisdk.TagInput]{
		List: s.List, Get: s.Get, Create: s.Create, Update: s.Update, Delete: s.Delete,
		Bind: func(in apisdk.TagInput, t *domain.Tag, full bool) error {
			b := binder{full: full}
			bind(&b, "tenant", &t.TenantID, in.Tenant, true)
			bind(&b, "tag", &t.Tag, in.Tag, true)
			return b.err()
		},
		Render: func(t domain.Tag) (any, error) {
			return apisdk.Tag{ID: t.ID, Tenant: t.TenantID, Tag: t.Tag, Slug: t.Slug, Audit: renderAudit(t.Audit)}, nil
		},
	}
}

// Key material is write-only: an omitted key keeps the stored value even
// on PUT.
func credentialResource(s *service.StorageCredentialService) resource[domain.StorageCredential, apisdk.StorageCredentialInput] {
	return resource[domain.StorageCredential, apisdk.StorageCredentialInput]{
		List: s.List, Get: s.Get, Create: s.Create, Update: s.Update, Delete: s.Delete,
		Bind: func(in apisdk.StorageCredentialInput, c *domain.StorageCredential, full bool) error {
			b := binder{full: full}
			bind(&b, "tenant", &c.TenantID, in.Tenant, true)
			bind(&b, "name", &c.Name, in.Name, true)
			bindChoice(&b, "stype", &c.SType, in.SType, true)
			bind(&b, "access_key_id", &c.AccessKeyID, in.AccessKeyID, false)
			bind(&b, "secret_access_key", &c.SecretAccessKey, in.SecretAccessKey, false)
			bind(&b, "endpoint", &c.Endpoint, in.Endpoint, false)
			bind(&b, "bucket", &c.Bucket, in.Bucket, false)
			bind(&b, "region", &c.Region, in.Region, false)
			return b.err()
		},
		Render: func(c domain.StorageCredential) (any, error) {
			return apisdk.StorageCredential{
				ID:        c.ID,
				Tenant:    c.TenantID,
				Name:      c.Name,
				SType:     string(c.SType),
				Endpoint:  c.Endpoint,
				Bucket:    c.Bucket,
				Region:    c.Region,
				HasSecret: c.HasSecret(),
				Audit:     renderAudit(c.Audit),
			}, nil
		},
	}
}

func domainResource(s *service.DomainService) resource[domain.Domain, apisdk.DomainInput] {
	return resource[domain.Domain, apisdk.DomainInput]{
		List: s.List, Get: s.Get, Create: s.Create, Update: s.Update, Delete: s.Delete,
		Bind: func(in apisdk.DomainInput, d *domain.Domain, full bool) error {
			b := binder{full: full}
			bind(&b, "tenant", &d.TenantID, in.Tenant, true)
			bind(&b, "name", &d.Name, in.Name, true)
			bind(&b, "verified", &d.Verified, in.Verified, false)
			return b.err()
		},
		Render: func(d domain.Domain) (any, error) {
			return apisdk.Domain{ID: d.ID, Tenant: d.TenantID, Name: d.Name, Verified: d.Verified, Audit: renderAudit(d.Audit)}, nil
		},
	}
}

func senderResource(s *service.SenderService) resource[domain.Sender, apisdk.SenderInput] {
	return resource[domain.Sender, apisdk.SenderInput]{
		List: s.List, Get: s.Get, Create: s.Create, Update: s.Update, Delete: s.Delete,
		Bind: func(in apisdk.SenderInput, x *domain.Sender, full bool) error {
			b := binder{full: full}
			bind(&b, "tenant", &x.TenantID, in.Tenant, true)
			bind(&b, "name", &x.Name, in.Name, true)
			bind(&b, "email", &x.Email, in.Email, true)
			bind(&b, "mobile_number", &x.MobileNumber, in.MobileNumber, false)
			return b.err()
		},
		Render: func(x domain.Sender) (any, error) {
			return apisdk.Sender{
				ID:              x.ID,
				Tenant:          x.TenantID,
				Name:            x.Name,
				Email:           x.Email,
				MobileNumber:    x.MobileNumber,
				EmailVerified:   x.EmailVerified,
				MobileVerified:  x.MobileVerified,
				VerificationKey: x.VerificationKey,
				FormattedEmail:  domain.FormattedEmail(x),
				Audit:           renderAudit(x.Audit),
			}, nil
		},
	}
}

func attachmentResource(s *service.AttachmentService) resource[domain.Attachment, apisdk.AttachmentInput] {
	return resource[domain.Attachment, apisdk.AttachmentInput]{
		List: s.List, Get: s.Get, Create: s.Create, Update: s.Update, Delete: s.Delete,
		Bind: func(in apisdk.AttachmentInput, a *domain.Attachment, full bool) error {
			b := binder{full: full}
			bind(&b, "tenant", &a.TenantID, in.Tenant, true)
			bind(&b, "description", &a.Description, in.Description, true)
			bindChoice(&b, "source", &a.Source, in.Source, true)
			bind(&b, "url", &a.URL, in.URL, false)
			bind(&b, "storage_key", &a.StorageKey, in.StorageKey, false)
			bind(&b, "storage_credential", &a.StorageCredentialID, in.StorageCredential, false)
			bindChoice(&b, "naming", &a.Naming, in.Naming, true)
			bind(&b, "url_param", &a.URLParam, in.URLParam, false)
			bind(&b, "filename_template", &a.FilenameTemplate, in.FilenameTemplate, false)
			bind(&b, "unzip", &a.Unzip, in.Unzip, false)
			return b.err()
		},
		Render: func(a domain.Attachment) (any, error) { return renderAttachment(a) },
	}
}

func renderAttachment(a domain.Attachment) (any, error) {
	name, err := domain.OriginalFilename(a)
	if err != nil {
		return nil, err
	}
	return apisdk.Attachment{
		ID:                a.ID,
		Tenant:            a.TenantID,
		Description:       a.Description,
		Source:            string(a.Source),
		URL:               a.URL,
		StorageKey:        a.StorageKey,
		StorageCredential: optional(a.StorageCredentialID),
		Naming:            string(a.Naming),
		URLParam:          a.URLParam,
		FilenameTemplate:  a.FilenameTemplate,
		Unzip:             a.Unzip,
		OriginalFilename:  name,
		Audit:             renderAudit(a.Audit),
	}, nil
}

func broadcastResource(s *service.BroadcastService) resource[domain.Broadcast, apisdk.BroadcastInput] {
	return resource[domain.Broadcast, apisdk.BroadcastInput]{
		List: s.List, Get: s.Get, Create: s.Create, Update: s.Update, Delete: s.Delete,
		Bind: func(in apisdk.BroadcastInput, x *domain.Broadcast, full bool) error {
			b := binder{full: full}
			bind(&b, "tenant", &x.TenantID, in.Tenant, true)
			bind(&b, "name", &x.Name, in.Name, true)
			bindChoice(&b, "channel_type", &x.ChannelType, in.ChannelType, true)
			bind(&b, "domain", &x.DomainID, in.Domain, false)
			bind(&b, "sender", &x.SenderID, in.Sender, false)
			bind(&b, "storage_credential", &x.StorageCredentialID, in.StorageCredential, false)
			bindChoice(&b, "status", &x.Status, in.Status, false)
			bind(&b, "tags", &x.TagIDs, in.Tags, false)
			bind(&b, "attachments", &x.AttachmentIDs, in.Attachments, false)
			bind(&b, "email_subject", &x.EmailSubject, in.EmailSubject, false)
			bind(&b, "email_body", &x.EmailBody, in.EmailBody, false)
			return b.err()
		},
		Render: func(x domain.Broadcast) (any, error) {
			return apisdk.Broadcast{
				ID:                x.ID,
				Tenant:            x.TenantID,
				Name:              x.Name,
				ChannelType:       string(x.ChannelType),
				Domain:            optional(x.DomainID),
				Sender:            optional(x.SenderID),
				StorageCredential: optional(x.StorageCredentialID),
				Status:            string(x.Status),
				Tags:              orEmpty(x.TagIDs),
				Attachments:       orEmpty(x.AttachmentIDs),
				EmailSubject:      x.EmailSubject,
				EmailBody:         x.EmailBody,
				Audit:             renderAudit(x.Audit),
			}, nil
		},
	}
}

func dataSetResource(s *service.DataSetService) resource[domain.DataSet, apisdk.DataSetInput] {
	return resource[domain.DataSet, apisdk.DataSetInput]{
		List: s.List, Get: s.Get, Create: s.Create, Update: s.Update, Delete: s.Delete,
		Bind: func(in apisdk.DataSetInput, d *domain.DataSet, full bool) error {
			if d.ID == "" && in.HasHeader == nil {
				d.HasHeader = true
			}
			b := binder{full: full}
			bind(&b, "tenant", &d.TenantID, in.Tenant, true)
			bind(&b, "name", &d.Name, in.Name, true)
			bind(&b, "encoding", &d.Encoding, in.Encoding, false)
			bind(&b, "delimiter", &d.Delimiter, in.Delimiter, false)
			bind(&b, "quotechar", &d.Quotechar, in.Quotechar, false)
			bind(&b, "has_header", &d.HasHeader, in.HasHeader, false)
			bind(&b, "fields", &d.Fields, in.Fields, false)
			return b.err()
		},
		Render: func(d domain.DataSet) (any, error) { return renderDataSet(d) },
	}
}

func renderDataSet(d domain.DataSet) (any, error) {
	name, err := domain.DataSetFilename(d)
	if err != nil {
		return nil, err
	}
	return apisdk.DataSet{
		ID:               d.ID,
		Tenant:           d.TenantID,
		Name:             d.Name,
		Encoding:         d.Encoding,
		Delimiter:        d.Delimiter,
		Quotechar:        d.Quotechar,
		HasHeader:        d.HasHeader,
		Fields:           orEmpty(d.Fields),
		OriginalFilename: name,
		Audit:            renderAudit(d.Audit),
	}, nil
}

// The ledger is append-only; update and delete reach the service so the
// caller gets a uniform 405.
func balanceResource(s *service.BalanceService) resource[domain.BalanceEntry, apisdk.BalanceEntryInput] {
	return resource[domain.BalanceEntry, apisdk.BalanceEntryInput]{
		List: s.List,
		Get:  s.Get,
		CreateFrom: func(ctx context.Context, ident service.Identity, in apisdk.BalanceEntryInput) (domain.BalanceEntry, error) {
			var e domain.BalanceEntry
			b := binder{full: true}
			bind(&b, "tenant", &e.TenantID, in.Tenant, true)
			bindChoice(&b, "channel_type", &e.ChannelType, in.ChannelType, true)
			bind(&b, "qty", &e.Qty, in.Qty, true)
			bindChoice(&b, "origin_type", &e.OriginType, in.OriginType, true)
			bind(&b, "origin_id", &e.OriginID, in.OriginID, true)
			if err := b.err(); err != nil {
				return domain.BalanceEntry{}, err
			}
			return s.Append(ctx, ident, e, in.Balance)
		},
		Update: func(ctx context.Context, ident service.Identity, id string, _ func(*domain.BalanceEntry) error) (domain.BalanceEntry, error) {
			return domain.BalanceEntry{}, s.Update(ctx, ident, id)
		},
		Delete: s.Delete,
		Render: func(e domain.BalanceEntry) (any, error) {
			return apisdk.BalanceEntry{
				ID:          e.ID,
				Tenant:      e.TenantID,
				ChannelType: string(e.ChannelType),
				Qty:         e.Qty,
				Balance:     e.Balance,
				OriginType:  string(e.OriginType),
				OriginID:    e.OriginID,
				Audit:       renderAudit(e.Audit),
			}, nil
		},
	}
}
