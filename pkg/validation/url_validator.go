package validation

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

// ErrInvalidURL is wrapped by every URL validation failure
var ErrInvalidURL = errors.New("invalid image URL")

// URLOption configures a URLValidator
type URLOption func(*URLValidator)

// URLValidator decides which remote image URLs the service may fetch
type URLValidator struct {
	schemes      map[string]struct{}
	hosts        []string
	blockPrivate bool
}

// WithSchemes replaces the accepted schemes (default http and https)
func WithSchemes(schemes ...string) URLOption {
	return func(v *URLValidator) {
		v.schemes = make(map[string]struct{}, len(schemes))
		for _, s := range schemes {
			v.schemes[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
		}
	}
}

// WithHosts restricts fetching to the listed hosts. An entry starting with
// "." matches any subdomain, so ".example.com" accepts cdn.example.com.
func WithHosts(hosts ...string) URLOption {
	return func(v *URLValidator) {
		v.hosts = v.hosts[:0]
		for _, h := range hosts {
			if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
				v.hosts = append(v.hosts, h)
			}
		}
	}
}

// WithoutPrivateAddresses rejects localhost and literal loopback, private,
// link-local and unspecified IP addresses
func WithoutPrivateAddresses() URLOption {
	return func(v *URLValidator) {
		v.blockPrivate = true
	}
}

// NewURLValidator creates a validator accepting http and https URLs on any host
func NewURLValidator(opts ...URLOption) *URLValidator {
	v := &URLValidator{}
	WithSchemes("http", "https")(v)
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateImageURL checks that imageURL may be fetched
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return fmt.Errorf("%w: URL cannot be empty", ErrInvalidURL)
	}

	u, err := url.Parse(imageURL)
	if err != nil {
		return fmt.Errorf("%w: invalid URL format: %v", ErrInvalidURL, err)
	}
	if _, ok := v.schemes[strings.ToLower(u.Scheme)]; !ok {
		return fmt.Errorf("%w: URL scheme %q not allowed", ErrInvalidURL, u.Scheme)
	}
	if u.User != nil {
		return fmt.Errorf("%w: URL must not carry credentials", ErrInvalidURL)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("%w: URL must have a valid host", ErrInvalidURL)
	}
	if v.blockPrivate && isPrivateHost(host) {
		return fmt.Errorf("%w: URL host %q is a private address", ErrInvalidURL, host)
	}
	if !v.hostAllowed(host) {
		return fmt.Errorf("%w: URL host %q not allowed", ErrInvalidURL, host)
	}
	return nil
}

func (v *URLValidator) hostAllowed(host string) bool {
	if len(v.hosts) == 0 {
		return true
	}
	for _, allowed := range v.hosts {
		if strings.HasPrefix(allowed, ".") {
			if strings.HasSuffix(host, allowed) {
				return true
			}
			continue
		}
		if host == allowed {
			return true
		}
	}
	return false
}

func isPrivateHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified()
}
