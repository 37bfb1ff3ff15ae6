package wire

import (
	"crypto/sha1" //nolint:gosec // RFC 5155 mandates SHA-1 for NSEC3 hashing.
	"strings"
)

// HashName computes the RFC 5155 §5 iterative NSEC3 hash: an initial
// SHA-1 over the lowercased wire-format name concatenated with salt,
// followed by iterations further rounds of SHA-1(previous || salt).
func HashName(name Name, iterations uint16, salt []byte) []byte {
	wire := lowercaseWireName(name)
	h := sha1.Sum(append(wire, salt...)) //nolint:gosec
	digest := h[:]
	for i := uint16(0); i < iterations; i++ {
		next := sha1.Sum(append(append([]byte(nil), digest...), salt...)) //nolint:gosec
		digest = next[:]
	}
	return digest
}

func lowercaseWireName(n Name) []byte {
	b := GetBuffer()
	defer PutBuffer(b)
	_ = writeUncompressedName(b, Name{labels: lowercaseLabels(n.labels)})
	return append([]byte(nil), b.Buf...)
}

func lowercaseLabels(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = strings.ToLower(l)
	}
	return out
}

const nsec3Base32Alphabet = "0123456789abcdefghijklmnopqrstuv"

// Base32Encode renders data, unpadded and in lowercase, in the "base32hex"
// extended-hex alphabet (RFC 4648 section 7) that RFC 5155 uses for NSEC3
// owner-name labels.
func Base32Encode(data []byte) string {
	var sb strings.Builder
	var buf uint32
	bits := 0
	for _, b := range data {
		buf = buf<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			sb.WriteByte(nsec3Base32Alphabet[(buf>>uint(bits))&0x1F])
		}
	}
	if bits > 0 {
		sb.WriteByte(nsec3Base32Alphabet[(buf<<uint(5-bits))&0x1F])
	}
	return sb.String()
}
