package httpaccess

import (
	"encoding/base64"
	"encoding/binary"
	"net"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Credentials produce the Proxy-Authorization value for a proxy.
type Credentials interface {
	// Scheme is the authentication scheme, "Basic" or "NTLM".
	Scheme() string
	// Authorization returns the full header value, scheme included.
	Authorization() (string, error)
}

// BasicCredentials authenticate with a user name and password.
type BasicCredentials struct {
	UserName string
	Password string
}

// Scheme implements Credentials.
func (c BasicCredentials) Scheme() string { return "Basic" }

// Authorization implements Credentials.
func (c BasicCredentials) Authorization() (string, error) {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.UserName+":"+c.Password)), nil
}

// NTCredentials are Windows domain credentials. They produce only the NTLM
// negotiate (Type 1) message. The challenge a proxy returns with its 407 is
// never answered, so NTLM proxy authentication does not complete, over
// CONNECT tunnels or plain HTTP. UserName and Password are carried but not
// sent.
type NTCredentials struct {
	UserName string
	Password string
	// Host is the workstation name sent in the negotiate message.
	Host string
	// Domain is the Windows domain the user belongs to.
	Domain string
}

// Scheme implements Credentials.
func (c NTCredentials) Scheme() string { return "NTLM" }

// Authorization implements Credentials. The value is the same on every call:
// the negotiate message, never an authenticate message.
func (c NTCredentials) Authorization() (string, error) {
	msg, err := ntlmNegotiate(c.Domain, c.Host)
	if err != nil {
		return "", err
	}
	return "NTLM " + base64.StdEncoding.EncodeToString(msg), nil
}

// AuthScope restricts credentials to one proxy endpoint and realm.
type AuthScope struct {
	Host  string `json:"host"`
	Port  int    `json:"port"`
	Realm string `json:"realm,omitempty"`
}

// Matches reports whether proxyAddr (host:port) belongs to the scope.
func (s AuthScope) Matches(proxyAddr string) bool {
	host, port, err := net.SplitHostPort(proxyAddr)
	if err != nil {
		return false
	}
	return strings.EqualFold(host, s.Host) && port == strconv.Itoa(s.Port)
}

func (s AuthScope) String() string {
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	if s.Realm == "" {
		return addr
	}
	return addr + " realm=" + s.Realm
}

// NTLM negotiate flags.
const (
	ntlmNegotiateUnicode         = 0x00000001
	ntlmNegotiateOEM             = 0x00000002
	ntlmRequestTarget            = 0x00000004
	ntlmNegotiateNTLM            = 0x00000200
	ntlmDomainSupplied           = 0x00001000
	ntlmWorkstationSupplied      = 0x00002000
	ntlmNegotiateAlwaysSign      = 0x00008000
	ntlmNegotiateExtendedSession = 0x00080000

	ntlmNegotiateHeaderLen = 32
)

var ntlmSignature = []byte("NTLMSSP\x00")

// ntlmNegotiate builds an NTLM Type 1 message. Domain and workstation are
// sent upper-cased in the OEM code page.
func ntlmNegotiate(domain, workstation string) ([]byte, error) {
	enc := charmap.CodePage437.NewEncoder()
	dom, err := enc.String(strings.ToUpper(domain))
	if err != nil {
		return nil, err
	}
	ws, err := enc.String(strings.ToUpper(workstation))
	if err != nil {
		return nil, err
	}

	flags := uint32(ntlmNegotiateUnicode | ntlmNegotiateOEM | ntlmRequestTarget |
		ntlmNegotiateNTLM | ntlmNegotiateAlwaysSign | ntlmNegotiateExtendedSession)
	if dom != "" {
		flags |= ntlmDomainSupplied
	}
	if ws != "" {
		flags |= ntlmWorkstationSupplied
	}

	msg := make([]byte, ntlmNegotiateHeaderLen, ntlmNegotiateHeaderLen+len(dom)+len(ws))
	copy(msg, ntlmSignature)
	binary.LittleEndian.PutUint32(msg[8:], 1)
	binary.LittleEndian.PutUint32(msg[12:], flags)

	domOffset := ntlmNegotiateHeaderLen
	wsOffset := domOffset + len(dom)
	putSecurityBuffer(msg[16:], len(dom), domOffset)
	putSecurityBuffer(msg[24:], len(ws), wsOffset)

	msg = append(msg, dom...)
	msg = append(msg, ws...)
	return msg, nil
}

func putSecurityBuffer(b []byte, length, offset int) {
	binary.LittleEndian.PutUint16(b[0:], uint16(length))
	binary.LittleEndian.PutUint16(b[2:], uint16(length))
	binary.LittleEndian.PutUint32(b[4:], uint32(offset))
}
