package replica

import (
	"fmt"
	"net/netip"
	"strings"
	"unicode/utf8"
)

// MaskType names a data format with a built-in masking rule.
type MaskType string

const (
	MaskSSN   MaskType = "ssn"   // 123-45-6789 -> ***-**-6789
	MaskEmail MaskType = "email" // alice@example.com -> a***@example.com
	MaskPhone MaskType = "phone" // (555) 123-4567 -> (***) ***-4567
	MaskCard  MaskType = "card"  // 4111 1111 1111 1111 -> **** **** **** 1111
	MaskIP    MaskType = "ip"    // 192.168.1.100 -> 192.168.xxx.xxx
	MaskUUID  MaskType = "uuid"  // 550e8400-e29b-... -> 550e8400-****-****-****-************
	MaskIBAN  MaskType = "iban"  // GB82WEST12345698765432 -> GB82**************5432
	MaskName  MaskType = "name"  // John Smith -> J*** S****
)

// Masker hides part of a string while keeping it recognisable.
type Masker interface {
	Mask(value string) string
}

// MaskFunc adapts a plain function to Masker.
type MaskFunc func(string) string

// Mask calls f.
func (f MaskFunc) Mask(value string) string { return f(value) }

var builtinMaskers = map[MaskType]Masker{
	MaskSSN:   MaskFunc(maskSSN),
	MaskEmail: MaskFunc(maskEmail),
	MaskPhone: MaskFunc(maskPhone),
	MaskCard:  MaskFunc(maskCard),
	MaskIP:    MaskFunc(maskIP),
	MaskUUID:  MaskFunc(maskUUID),
	MaskIBAN:  MaskFunc(maskIBAN),
	MaskName:  MaskFunc(maskName),
}

// stars masks every character of s. Used when s does not look like the format.
func stars(s string) string {
	return strings.Repeat("*", utf8.RuneCountInString(s))
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func maskSSN(value string) string {
	d := digitsOf(value)
	if len(d) < 4 {
		return stars(value)
	}
	return "***-**-" + d[len(d)-4:]
}

func maskEmail(value string) string {
	at := strings.LastIndex(value, "@")
	if at < 1 {
		return stars(value)
	}
	_, size := utf8.DecodeRuneInString(value)
	return value[:size] + "***" + value[at:]
}

func maskPhone(value string) string {
	d := digitsOf(value)
	if len(d) < 4 {
		return stars(value)
	}
	last4 := d[len(d)-4:]
	switch {
	case len(d) >= 10 && strings.HasPrefix(value, "("):
		return "(***) ***-" + last4
	case len(d) >= 10:
		return "***-***-" + last4
	}
	return "***-" + last4
}

func maskCard(value string) string {
	d := digitsOf(value)
	if len(d) < 4 {
		return stars(value)
	}
	last4 := d[len(d)-4:]

	sep := ""
	switch {
	case strings.Contains(value, " "):
		sep = " "
	case strings.Contains(value, "-"):
		sep = "-"
	default:
		return strings.Repeat("*", len(d)-4) + last4
	}
	groups := make([]string, 0, (len(d)+3)/4)
	for i := 0; i < (len(d)-1)/4; i++ {
		groups = append(groups, "****")
	}
	return strings.Join(append(groups, last4), sep)
}

// maskIP keeps the network half of an address: two octets of IPv4, four
// groups of IPv6.
func maskIP(value string) string {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return stars(value)
	}
	if addr.Is4() {
		b := addr.As4()
		return fmt.Sprintf("%d.%d.xxx.xxx", b[0], b[1])
	}
	groups := strings.Split(addr.StringExpanded(), ":")
	return strings.Join(groups[:4], ":") + ":xxxx:xxxx:xxxx:xxxx"
}

func maskUUID(value string) string {
	parts := strings.Split(value, "-")
	if len(parts) != 5 {
		return stars(value)
	}
	return parts[0] + "-****-****-****-************"
}

func maskIBAN(value string) string {
	r := []rune(value)
	if len(r) <= 8 {
		return stars(value)
	}
	return string(r[:4]) + strings.Repeat("*", len(r)-8) + string(r[len(r)-4:])
}

func maskName(value string) string {
	words := strings.Fields(value)
	for i, w := range words {
		r := []rune(w)
		words[i] = string(r[0]) + strings.Repeat("*", len(r)-1)
	}
	return strings.Join(words, " ")
}
