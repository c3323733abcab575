package httpaccess

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/httpaccess/config"
	"github.com/kbukum/httpaccess/logger"
	"github.com/kbukum/httpaccess/validation"
)

// Configuration keys read by LoadSettings.
const (
	KeyProxyHost                           = "httpAccess.proxyHost"
	KeyProxyPort                           = "httpAccess.proxyPort"
	KeyProxyUserName                       = "httpAccess.proxyUserName"
	KeyProxyPassword                       = "httpAccess.proxyPassword"
	KeyHostName                            = "httpAccess.hostName"
	KeyDomainName                          = "httpAccess.domainName"
	KeyRealm                               = "httpAccess.realm"
	KeyNoProxyFor                          = "httpAccess.noProxyFor"
	KeyContentCharset                      = "httpAccess.contentCharset"
	KeyElementCharset                      = "httpAccess.elementCharset"
	KeySocketTimeout                       = "httpAccess.socketTimeout"
	KeyConnectionTimeout                   = "httpAccess.connectionTimeout"
	KeyConnectionPoolEnabled               = "httpAccess.connectionPoolEnabled"
	KeyConnectionPoolMaxTotalConnections   = "httpAccess.connectionPoolMaxTotalConnections"
	KeyConnectionPoolMaxConnectionsPerHost = "httpAccess.connectionPoolMaxConnectionsPerHost"
	KeyResponsesCodeAuthorized             = "httpAccess.responsesCodeAuthorized"
)

// Pool sizing used when the configured values are absent or unusable.
const (
	DefaultMaxTotalConnections   = 20
	DefaultMaxConnectionsPerHost = 2
)

// Settings is the immutable configuration snapshot behind a Service.
type Settings struct {
	ProxyHost     string `key:"httpAccess.proxyHost"`
	ProxyPort     int    `key:"httpAccess.proxyPort" validate:"gte=0,lte=65535"`
	ProxyUserName string
	ProxyPassword string
	// HostName and DomainName together switch the credentials to NTLM.
	HostName   string
	DomainName string
	Realm      string

	// NoProxyFor holds the parsed bypass patterns.
	NoProxyFor []string

	ContentCharset string
	ElementCharset string

	SocketTimeout     time.Duration `key:"httpAccess.socketTimeout" validate:"gte=0"`
	ConnectionTimeout time.Duration `key:"httpAccess.connectionTimeout" validate:"gte=0"`

	Pool PoolSettings

	// ResponseValidator classifies response statuses. Nil means the
	// DefaultResponseCodes set.
	ResponseValidator ResponseStatusValidator
}

// PoolSettings size the shared connection pool.
type PoolSettings struct {
	Enabled               bool
	MaxTotalConnections   int
	MaxConnectionsPerHost int
}

// LoadSettings reads every httpAccess.* key from store. It returns either a
// complete Settings or an error; malformed numbers, charsets and status codes
// are all reported at once. Unusable pool sizes are not fatal: they fall back
// to the defaults with a warning.
func LoadSettings(store config.PropertyStore) (*Settings, error) {
	get := func(key string) string { return strings.TrimSpace(store.GetProperty(key)) }

	v := validation.New()
	s := &Settings{
		ProxyHost:         strings.TrimSuffix(strings.TrimPrefix(get(KeyProxyHost), "["), "]"),
		ProxyPort:         v.Int(KeyProxyPort, get(KeyProxyPort)),
		ProxyUserName:     get(KeyProxyUserName),
		ProxyPassword:     store.GetProperty(KeyProxyPassword),
		HostName:          get(KeyHostName),
		DomainName:        get(KeyDomainName),
		Realm:             get(KeyRealm),
		NoProxyFor:        ParseBypassList(store.GetProperty(KeyNoProxyFor)),
		ContentCharset:    get(KeyContentCharset),
		ElementCharset:    get(KeyElementCharset),
		SocketTimeout:     v.Millis(KeySocketTimeout, get(KeySocketTimeout)),
		ConnectionTimeout: v.Millis(KeyConnectionTimeout, get(KeyConnectionTimeout)),
	}
	v.Host(KeyProxyHost, s.ProxyHost).
		Charset(KeyContentCharset, s.ContentCharset).
		Charset(KeyElementCharset, s.ElementCharset)

	codes := get(KeyResponsesCodeAuthorized)
	if codes == "" {
		codes = DefaultResponseCodes
	}
	statuses, reason := parseStatusSet(codes)
	if reason != "" {
		v.AddValueError(KeyResponsesCodeAuthorized, codes, reason)
	}
	s.ResponseValidator = statuses

	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(s); err != nil {
		return nil, err
	}

	s.Pool = loadPoolSettings(store)
	return s, nil
}

func loadPoolSettings(store config.PropertyStore) PoolSettings {
	pool := PoolSettings{Enabled: store.GetPropertyBool(KeyConnectionPoolEnabled, false)}

	v := validation.New()
	pool.MaxTotalConnections = poolSize(v, KeyConnectionPoolMaxTotalConnections, store.GetProperty(KeyConnectionPoolMaxTotalConnections))
	pool.MaxConnectionsPerHost = poolSize(v, KeyConnectionPoolMaxConnectionsPerHost, store.GetProperty(KeyConnectionPoolMaxConnectionsPerHost))

	for _, fe := range v.Errors() {
		logger.WithComponent(componentName).Warn("Ignoring pool size, using default", logger.Fields(
			logger.FieldKey, fe.Field,
			"value", fe.Value,
			"reason", fe.Message,
		))
	}
	return pool.withDefaults()
}

// poolSize returns 0 for blank input and records an error for anything that
// is not a positive integer.
func poolSize(v *validation.Validator, key, raw string) int {
	before := len(v.Errors())
	n := v.Int(key, raw)
	if len(v.Errors()) > before {
		return 0
	}
	if n < 0 || (n == 0 && strings.TrimSpace(raw) != "") {
		v.Custom(false, key, "must be a positive integer")
		return 0
	}
	return n
}

func (p PoolSettings) withDefaults() PoolSettings {
	if p.MaxTotalConnections <= 0 {
		p.MaxTotalConnections = DefaultMaxTotalConnections
	}
	if p.MaxConnectionsPerHost <= 0 {
		p.MaxConnectionsPerHost = DefaultMaxConnectionsPerHost
	}
	return p
}

// ProxyEnabled reports whether both a proxy host and a positive port are set.
func (s *Settings) ProxyEnabled() bool {
	return s.ProxyHost != "" && s.ProxyPort > 0
}

// ProxyAddress returns host:port of the proxy, or "" when no proxy is set.
func (s *Settings) ProxyAddress() string {
	if !s.ProxyEnabled() {
		return ""
	}
	return net.JoinHostPort(s.ProxyHost, strconv.Itoa(s.ProxyPort))
}

// Credentials returns NTLM credentials when both HostName and DomainName
// are set, Basic credentials when both user name and password are set, and
// nil otherwise.
func (s *Settings) Credentials() Credentials {
	switch {
	case s.HostName != "" && s.DomainName != "":
		return NTCredentials{
			UserName: s.ProxyUserName,
			Password: s.ProxyPassword,
			Host:     s.HostName,
			Domain:   s.DomainName,
		}
	case s.ProxyUserName != "" && s.ProxyPassword != "":
		return BasicCredentials{UserName: s.ProxyUserName, Password: s.ProxyPassword}
	default:
		return nil
	}
}

// AuthScope returns the scope the proxy credentials are bound to.
func (s *Settings) AuthScope() AuthScope {
	return AuthScope{Host: s.ProxyHost, Port: s.ProxyPort, Realm: s.Realm}
}

func (s *Settings) validator() ResponseStatusValidator {
	if s.ResponseValidator == nil {
		return defaultStatusSet
	}
	return s.ResponseValidator
}

// Summary is a one-line description safe for logs; it never includes the
// password.
func (s *Settings) Summary() string {
	proxy := "none"
	if s.ProxyEnabled() {
		proxy = s.ProxyAddress()
		if c := s.Credentials(); c != nil {
			proxy += " auth=" + c.Scheme()
		}
	}
	pool := "off"
	if s.Pool.Enabled {
		pool = fmt.Sprintf("%d/%d", s.Pool.MaxTotalConnections, s.Pool.MaxConnectionsPerHost)
	}
	return fmt.Sprintf("proxy=%s bypass=%d pool=%s", proxy, len(s.NoProxyFor), pool)
}
