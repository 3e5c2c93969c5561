package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/dds2/internal/api/service"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/blobx"
	"github.com/aussiebroadwan/dds2/pkg/httpx"
	"github.com/aussiebroadwan/dds2/pkg/jwtx"
	"github.com/aussiebroadwan/dds2/pkg/metricsx"
	"github.com/aussiebroadwan/dds2/pkg/slogx"

	_ "github.com/aussiebroadwan/dds2/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// DefaultMaxUploadBytes caps multipart file uploads.
const DefaultMaxUploadBytes = 32 << 20

// Limits selects the rate limit applied to each class of route.
type Limits struct {
	Credentials httpx.RateLimitConfig // token, refresh, bootstrap, TOTP verify
	Writes      httpx.RateLimitConfig
	Reads       httpx.RateLimitConfig
	Public      httpx.RateLimitConfig // jwks, health probes
}

// DefaultLimits uses the httpx profiles, including any environment overrides.
func DefaultLimits() Limits {
	return Limits{
		Credentials: httpx.StrictLimit,
		Writes:      httpx.ModerateLimit,
		Reads:       httpx.LenientLimit,
		Public:      httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	blobs blobx.Store

	Limits         Limits
	MaxUploadBytes int64
	Metrics        *metricsx.Metrics

	Resolver          *service.TenantResolver
	TokenService      *service.TokenService
	BootstrapService  *service.BootstrapService
	MFAService        *service.MFAService
	UserService       *service.UserService
	ProfileService    *service.ProfileService
	TenantService     *service.TenantService
	RoleService       *service.RoleService
	TagService        *service.TagService
	CredentialService *service.StorageCredentialService
	DomainService     *service.DomainService
	SenderService     *service.SenderService
	AttachmentService *service.AttachmentService
	BroadcastService  *service.BroadcastService
	DataSetService    *service.DataSetService
	BalanceService    *service.BalanceService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	blobs blobx.Store,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:            http.NewServeMux(),
		keys:           keys,
		verifier:       verifier,
		buildVersion:   buildVersion,
		startTime:      time.Now(),
		store:          st,
		blobs:          blobs,
		logger:         logger,
		Limits:         DefaultLimits(),
		MaxUploadBytes: DefaultMaxUploadBytes,
		Resolver:       &service.TenantResolver{Store: st},
	}
}

// ApplyRoutes registers every route. Set the service fields first.
func (r *Router) ApplyRoutes() {
	r.middlewares = []httpx.Middleware{slogx.HTTPMiddleware(r.logger)}
	if r.Metrics != nil {
		// Innermost, so the matched pattern is visible after the mux returns.
		r.middlewares = append(r.middlewares, r.Metrics.Middleware)
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}

	r.registerTokens()
	r.registerBootstrap()
	r.registerUsers()
	r.registerProfiles()
	r.registerTenants()
	r.registerRoles()
	r.registerTags()
	r.registerStorageCredentials()
	r.registerDomains()
	r.registerSenders()
	r.registerAttachments()
	r.registerBroadcasts()
	r.registerDataSets()
	r.registerBalanceEntries()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			dds2 Broadcast Messaging API
//	@version		0.1.0
//	@description	Multi-tenant API for broadcast campaign definitions, contact datasets, attachments and the messaging balance ledger.
//	@description
//	@description				Access tokens are EdDSA or ES256 signed JWTs; verify them with the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/dds2
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h for method and path, with and without a trailing slash.
func (r *Router) handle(method, path string, h http.Handler) {
	base := trimSlash(path)
	r.Mux.Handle(method+" "+base, h)
	r.Mux.Handle(method+" "+base+"/{$}", h)
}

func trimSlash(p string) string {
	for len(p) > 1 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}

// secured wraps h with bearer authentication, the api scope, identity
// resolution and a per-user rate limit.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),       // verify JWT (iss/exp)
		httpx.RequireAnyScope(service.ScopeAPI), // enforce scope
		identify(r.Resolver),                    // load user and tenant set
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerTokens() {
	h := &TokenHandler{TokenService: r.TokenService}

	// Credential endpoints - strict rate limit by IP
	r.handle(http.MethodPost, "/api/token/", httpx.Chain(http.HandlerFunc(h.HandleToken),
		httpx.RateLimitByIP(r.Limits.Credentials),
	))
	r.handle(http.MethodPost, "/api/token/refresh/", httpx.Chain(http.HandlerFunc(h.HandleRefresh),
		httpx.RateLimitByIP(r.Limits.Credentials),
	))

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
}

func (r *Router) registerBootstrap() {
	h := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.handle(http.MethodPost, "/api/bootstrap", httpx.Chain(h,
		httpx.RateLimitByIP(r.Limits.Credentials),
	))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}
	r.handle(http.MethodGet, "/api/user/", r.secured(h.HandleList, r.Limits.Reads))
	r.handle(http.MethodPost, "/api/user/", r.secured(h.HandleCreate, r.Limits.Writes))
	r.handle(http.MethodGet, "/api/user/{id}/", r.secured(h.HandleGet, r.Limits.Reads))
	r.handle(http.MethodDelete, "/api/user/{id}/", r.secured(h.HandleDelete, r.Limits.Writes))
}

func (r *Router) registerProfiles() {
	registerResource(r, "profile", profileResource(r.ProfileService))

	h := &MFAHandler{MFAService: r.MFAService}
	r.handle(http.MethodPost, "/api/profile/{id}/totp/enroll", r.secured(h.HandleEnroll, r.Limits.Writes))
	// Verify accepts codes, so it is limited like a credential endpoint.
	r.handle(http.MethodPost, "/api/profile/{id}/totp/verify", r.secured(h.HandleVerify, r.Limits.Credentials))
	r.handle(http.MethodDelete, "/api/profile/{id}/totp", r.secured(h.HandleDisable, r.Limits.Credentials))
}

func (r *Router) registerTenants() {
	registerResource(r, "tenant", tenantResource(r.TenantService))
}

func (r *Router) registerRoles() {
	registerResource(r, "role", roleResource(r.RoleService))
}

func (r *Router) registerTags() {
	registerResource(r, "tag", tagResource(r.TagService))
}

func (r *Router) registerStorageCredentials() {
	registerResource(r, "storage-credential", credentialResource(r.CredentialService))
}

func (r *Router) registerDomains() {
	registerResource(r, "domain", domainResource(r.DomainService))
}

func (r *Router) registerSenders() {
	registerResource(r, "sender", senderResource(r.SenderService))
}

func (r *Router) registerAttachments() {
	registerResource(r, "attachment", attachmentResource(r.AttachmentService))

	h := &FileHandler{
		MaxBytes: r.MaxUploadBytes,
		Upload: func(req *http.Request, ident service.Identity, id string, up service.Upload) (any, error) {
			a, err := r.AttachmentService.Upload(req.Context(), ident, id, up)
			if err != nil {
				return nil, err
			}
			return renderAttachment(a)
		},
		Open: r.AttachmentService.Open,
	}
	r.handle(http.MethodPut, "/api/attachment/{id}/file", r.secured(h.HandleUpload, r.Limits.Writes))
	r.handle(http.MethodGet, "/api/attachment/{id}/file", r.secured(h.HandleDownload, r.Limits.Reads))
}

func (r *Router) registerBroadcasts() {
	registerResource(r, "broadcast", broadcastResource(r.BroadcastService))
}

func (r *Router) registerDataSets() {
	registerResource(r, "dataset", dataSetResource(r.DataSetService))

	h := &FileHandler{
		MaxBytes: r.MaxUploadBytes,
		Upload: func(req *http.Request, ident service.Identity, id string, up service.Upload) (any, error) {
			d, err := r.DataSetService.Upload(req.Context(), ident, id, up)
			if err != nil {
				return nil, err
			}
			return renderDataSet(d)
		},
		Open: r.DataSetService.Open,
	}
	r.handle(http.MethodPut, "/api/dataset/{id}/file", r.secured(h.HandleUpload, r.Limits.Writes))
	r.handle(http.MethodGet, "/api/dataset/{id}/file", r.secured(h.HandleDownload, r.Limits.Reads))
}

func (r *Router) registerBalanceEntries() {
	registerResource(r, "balance-entry", balanceResource(r.BalanceService))
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.store, r.blobs, r.keys),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
}
