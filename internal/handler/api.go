package handler

import (
	"log/slog"
	"net/netip"
	"strings"

	"github.com/sitecontent/internal/auth"
	"github.com/sitecontent/internal/media"
	"github.com/sitecontent/internal/service"
	"gorm.io/gorm"
)

// Options 汇总构造 API 所需的外部依赖与配置。
type Options struct {
	DB             *gorm.DB
	Credentials    auth.CredentialStore
	Tokens         *auth.TokenManager
	Accounts       auth.AccountResolver
	Media          media.Store
	Logger         *slog.Logger
	SiteBaseURL    string
	MaxUploadBytes int64
	// TrustedProxies 为可信反向代理的 IP 或 CIDR，只有来自它们的 X-Forwarded-Proto 会被采纳。
	TrustedProxies []string
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db             *gorm.DB
	gallery        *service.GalleryService
	catalog        *service.CatalogService
	credentials    auth.CredentialStore
	tokens         *auth.TokenManager
	accounts       auth.AccountResolver
	media          media.Store
	logger         *slog.Logger
	siteBaseURL    string
	maxUploadBytes int64
	trustedProxies []netip.Prefix
}

// NewAPI constructs a handler set with shared services.
func NewAPI(opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	accounts := opts.Accounts
	if accounts == nil {
		accounts = auth.NewDBAccountResolver(opts.DB)
	}

	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}

	return &API{
		db:             opts.DB,
		gallery:        service.NewGalleryService(opts.DB, opts.Media, logger),
		catalog:        service.NewCatalogService(opts.DB),
		credentials:    opts.Credentials,
		tokens:         opts.Tokens,
		accounts:       accounts,
		media:          opts.Media,
		logger:         logger,
		siteBaseURL:    opts.SiteBaseURL,
		maxUploadBytes: maxUpload,
		trustedProxies: parseTrustedProxies(opts.TrustedProxies, logger),
	}
}

// parseTrustedProxies 接受单个 IP 或 CIDR，无法解析的条目记录警告后忽略。
func parseTrustedProxies(entries []string, logger *slog.Logger) []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				logger.Warn("ignoring invalid trusted proxy", "value", entry, "error", err)
				continue
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			logger.Warn("ignoring invalid trusted proxy", "value", entry, "error", err)
			continue
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes
}

// fromTrustedProxy 判断请求的直连地址是否属于可信代理。
func (a *API) fromTrustedProxy(remoteIP string) bool {
	if len(a.trustedProxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(remoteIP)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range a.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
