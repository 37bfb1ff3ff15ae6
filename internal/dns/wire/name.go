package wire

import "strings"

// maxNameOctets is the RFC 1035 §3.1 limit: labels plus one length byte
// each, plus the terminating zero length octet.
const maxNameOctets = 255

// maxLabelOctets is the RFC 1035 §3.1 limit on a single label.
const maxLabelOctets = 63

// Name is an ordered sequence of labels. Comparison is case-insensitive
// per RFC 1035 §2.3.3; construction enforces the 63-octet label and
// 255-octet total limits so a valid Name can never fail to encode.
type Name struct {
	labels []string
}

// RootName is the zero-length name used by the OPT pseudo-RR.
func RootName() Name { return Name{} }

// NewName splits a presentation-format name ("www.example.com.") into
// validated labels. A trailing dot is optional and stripped.
func NewName(s string) (Name, error) {
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return Name{}, nil
	}
	parts := strings.Split(s, ".")
	labels := make([]string, 0, len(parts))
	total := 0
	for _, p := range parts {
		if len(p) == 0 {
			return Name{}, newFormatError("empty label in name %q", s)
		}
		if len(p) > maxLabelOctets {
			return Name{}, newFormatError("label %q exceeds %d octets", p, maxLabelOctets)
		}
		total += len(p) + 1
		labels = append(labels, p)
	}
	total++ // terminating zero length octet
	if total > maxNameOctets {
		return Name{}, newFormatError("name %q exceeds %d octets", s, maxNameOctets)
	}
	return Name{labels: labels}, nil
}

// MustName is NewName for compile-time-known-valid names (seed server
// names, test fixtures); it panics on invalid input.
func MustName(s string) Name {
	n, err := NewName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String renders the fully-qualified presentation form, always
// dot-terminated, matching the decoder's output regardless of whether the
// encoder used compression.
func (n Name) String() string {
	if len(n.labels) == 0 {
		return "."
	}
	return strings.Join(n.labels, ".") + "."
}

// Labels returns the label sequence, most-significant (leftmost) first.
func (n Name) Labels() []string { return append([]string(nil), n.labels...) }

// Equal compares two names case-insensitively per RFC 1035 §2.3.3.
func (n Name) Equal(other Name) bool {
	if len(n.labels) != len(other.labels) {
		return false
	}
	for i := range n.labels {
		if !strings.EqualFold(n.labels[i], other.labels[i]) {
			return false
		}
	}
	return true
}

// wireLen is the encoded length of the name without compression:
// sum(len(label)+1) + 1 for the terminator.
func (n Name) wireLen() int {
	total := 1
	for _, l := range n.labels {
		total += len(l) + 1
	}
	return total
}

// tail returns the suffix of labels starting at index i, used to find the
// longest previously-written suffix for compression.
func (n Name) tail(i int) Name {
	return Name{labels: n.labels[i:]}
}
