package normalize

import (
	"regexp"
	"strings"

	"github.com/lu-zhengda/mailboard/internal/domain"
)

var (
	// `Name <addr>`, `"Name" <addr>` or `<addr>`.
	namedAddrRe = regexp.MustCompile(`^"?([^"<]*?)"?\s*<([^>]+)>$`)
	bareAddrRe  = regexp.MustCompile(`[^\s<>"',;]+@[^\s<>"',;]+`)
)

// ParseAddresses splits a raw address header into entries. It is a
// pragmatic parser, not RFC 5322: the value is split on every comma, so a
// comma inside a quoted display name produces two entries.
//
// An entry that matches neither the named form nor contains anything
// address-shaped is returned verbatim as the Email.
func ParseAddresses(header string) []domain.Address {
	if strings.TrimSpace(header) == "" {
		return nil
	}

	var addrs []domain.Address
	for _, entry := range strings.Split(header, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		addrs = append(addrs, parseEntry(entry))
	}
	return addrs
}

func parseEntry(entry string) domain.Address {
	if m := namedAddrRe.FindStringSubmatch(entry); m != nil {
		return domain.Address{
			Name:  strings.Trim(strings.TrimSpace(m[1]), `"`),
			Email: strings.TrimSpace(m[2]),
		}
	}
	if addr := bareAddrRe.FindString(entry); addr != "" {
		return domain.Address{Email: addr}
	}
	return domain.Address{Email: entry}
}

// emails projects addresses to their bare email strings, returning nil for
// an empty list.
func emails(addrs []domain.Address) []string {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.Email
	}
	return out
}
