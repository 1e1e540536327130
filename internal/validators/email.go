package validators

import (
	"context"
	"net"
	"regexp"
	"strings"
	"time"
)

const lookupTimeout = 3 * time.Second

// IsEmailDomainValid reports whether the email's domain resolves, either
// through MX records or a plain address lookup.
func IsEmailDomainValid(email string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	return EmailDomainResolves(ctx, net.DefaultResolver, email)
}

type resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

func EmailDomainResolves(ctx context.Context, r resolver, email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]

	if mx, err := r.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}

	if hosts, err := r.LookupHost(ctx, domain); err == nil && len(hosts) > 0 {
		return true
	}

	return false
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsSlug accepts lowercase words joined by single hyphens.
func IsSlug(s string) bool {
	return len(s) <= 100 && slugPattern.MatchString(s)
}

// NormalizePhone strips formatting so "+34 600-00.00 00" and "+34600000000"
// identify the same client. A leading + is kept.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
