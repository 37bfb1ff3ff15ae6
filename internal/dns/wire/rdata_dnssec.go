package wire

// DSRdata is a delegation-signer record: key-tag, algorithm,
// digest-type, and the digest itself (remainder of rdata).
type DSRdata struct {
	KeyTag     uint16
	Algorithm  uint8
	DigestType uint8
	Digest     []byte
}

func (r DSRdata) Type() Rrtype { return TypeDS }

func (r DSRdata) encode(b *Buffer) error {
	b.WriteUint16(r.KeyTag)
	b.WriteByte(r.Algorithm)
	b.WriteByte(r.DigestType)
	b.WriteBytes(r.Digest)
	return nil
}

func decodeDSRdata(raw []byte) (Rdata, error) {
	if len(raw) < 4 {
		return nil, newFormatError("DS rdata truncated")
	}
	return DSRdata{
		KeyTag:     uint16(raw[0])<<8 | uint16(raw[1]),
		Algorithm:  raw[2],
		DigestType: raw[3],
		Digest:     append([]byte(nil), raw[4:]...),
	}, nil
}

// DNSKEYRdata is a DNSSEC public key record: flags, protocol, algorithm,
// and the public key itself (remainder of rdata).
type DNSKEYRdata struct {
	Flags     uint16
	Protocol  uint8
	Algorithm uint8
	PublicKey []byte
}

func (r DNSKEYRdata) Type() Rrtype { return TypeDNSKEY }

func (r DNSKEYRdata) encode(b *Buffer) error {
	b.WriteUint16(r.Flags)
	b.WriteByte(r.Protocol)
	b.WriteByte(r.Algorithm)
	b.WriteBytes(r.PublicKey)
	return nil
}

func decodeDNSKEYRdata(raw []byte) (Rdata, error) {
	if len(raw) < 4 {
		return nil, newFormatError("DNSKEY rdata truncated")
	}
	return DNSKEYRdata{
		Flags:     uint16(raw[0])<<8 | uint16(raw[1]),
		Protocol:  raw[2],
		Algorithm: raw[3],
		PublicKey: append([]byte(nil), raw[4:]...),
	}, nil
}

// RRSIGRdata is a resource record signature. SignerName is never
// compressed per RFC 4034 §3.
type RRSIGRdata struct {
	TypeCovered Rrtype
	Algorithm   uint8
	Labels      uint8
	OriginalTTL uint32
	Expiration  uint32
	Inception   uint32
	KeyTag      uint16
	SignerName  Name
	Signature   []byte
}

func (r RRSIGRdata) Type() Rrtype { return TypeRRSIG }

func (r RRSIGRdata) encode(b *Buffer) error {
	b.WriteUint16(uint16(r.TypeCovered))
	b.WriteByte(r.Algorithm)
	b.WriteByte(r.Labels)
	b.WriteUint32(r.OriginalTTL)
	b.WriteUint32(r.Expiration)
	b.WriteUint32(r.Inception)
	b.WriteUint16(r.KeyTag)
	if err := writeUncompressedName(b, r.SignerName); err != nil {
		return err
	}
	b.WriteBytes(r.Signature)
	return nil
}

func decodeRRSIGRdata(raw []byte) (Rdata, error) {
	if len(raw) < 18 {
		return nil, newFormatError("RRSIG rdata truncated")
	}
	r := RRSIGRdata{
		TypeCovered: Rrtype(uint16(raw[0])<<8 | uint16(raw[1])),
		Algorithm:   raw[2],
		Labels:      raw[3],
		OriginalTTL: uint32(raw[4])<<24 | uint32(raw[5])<<16 | uint32(raw[6])<<8 | uint32(raw[7]),
		Expiration:  uint32(raw[8])<<24 | uint32(raw[9])<<16 | uint32(raw[10])<<8 | uint32(raw[11]),
		Inception:   uint32(raw[12])<<24 | uint32(raw[13])<<16 | uint32(raw[14])<<8 | uint32(raw[15]),
		KeyTag:      uint16(raw[16])<<8 | uint16(raw[17]),
	}
	name, rest, err := readUncompressedName(raw[18:])
	if err != nil {
		return nil, err
	}
	r.SignerName = name
	r.Signature = append([]byte(nil), rest...)
	return r, nil
}

// NSECRdata asserts the next owner name in canonical ordering plus the
// set of types present at the owner name.
type NSECRdata struct {
	NextDomain Name
	Types      TypeBitMap
}

func (r NSECRdata) Type() Rrtype { return TypeNSEC }

func (r NSECRdata) encode(b *Buffer) error {
	if err := writeUncompressedName(b, r.NextDomain); err != nil {
		return err
	}
	r.Types.encode(b)
	return nil
}

func decodeNSECRdata(raw []byte) (Rdata, error) {
	next, rest, err := readUncompressedName(raw)
	if err != nil {
		return nil, err
	}
	bitmap, err := decodeTypeBitMap(rest)
	if err != nil {
		return nil, err
	}
	return NSECRdata{NextDomain: next, Types: bitmap}, nil
}

// NSEC3Rdata is the hashed-owner-name variant of NSEC (RFC 5155).
type NSEC3Rdata struct {
	HashAlgorithm  uint8
	Flags          uint8
	Iterations     uint16
	Salt           []byte
	NextHashedName []byte
	Types          TypeBitMap
}

func (r NSEC3Rdata) Type() Rrtype { return TypeNSEC3 }

func (r NSEC3Rdata) encode(b *Buffer) error {
	b.WriteByte(r.HashAlgorithm)
	b.WriteByte(r.Flags)
	b.WriteUint16(r.Iterations)
	b.WriteByte(byte(len(r.Salt)))
	b.WriteBytes(r.Salt)
	b.WriteByte(byte(len(r.NextHashedName)))
	b.WriteBytes(r.NextHashedName)
	r.Types.encode(b)
	return nil
}

func decodeNSEC3Rdata(raw []byte) (Rdata, error) {
	if len(raw) < 5 {
		return nil, newFormatError("NSEC3 rdata truncated")
	}
	r := NSEC3Rdata{
		HashAlgorithm: raw[0],
		Flags:         raw[1],
		Iterations:    uint16(raw[2])<<8 | uint16(raw[3]),
	}
	saltLen := int(raw[4])
	pos := 5
	if pos+saltLen > len(raw) {
		return nil, newFormatError("NSEC3 salt overruns rdata")
	}
	r.Salt = append([]byte(nil), raw[pos:pos+saltLen]...)
	pos += saltLen
	if pos >= len(raw) {
		return nil, newFormatError("NSEC3 rdata truncated before hash length")
	}
	hashLen := int(raw[pos])
	pos++
	if pos+hashLen > len(raw) {
		return nil, newFormatError("NSEC3 next-hashed-name overruns rdata")
	}
	r.NextHashedName = append([]byte(nil), raw[pos:pos+hashLen]...)
	pos += hashLen
	bitmap, err := decodeTypeBitMap(raw[pos:])
	if err != nil {
		return nil, err
	}
	r.Types = bitmap
	return r, nil
}

// NSEC3PARAMRdata advertises the hash parameters a zone uses, without a
// bound owner name.
type NSEC3PARAMRdata struct {
	HashAlgorithm uint8
	Flags         uint8
	Iterations    uint16
	Salt          []byte
}

func (r NSEC3PARAMRdata) Type() Rrtype { return TypeNSEC3PARAM }

func (r NSEC3PARAMRdata) encode(b *Buffer) error {
	b.WriteByte(r.HashAlgorithm)
	b.WriteByte(r.Flags)
	b.WriteUint16(r.Iterations)
	b.WriteByte(byte(len(r.Salt)))
	b.WriteBytes(r.Salt)
	return nil
}

func decodeNSEC3PARAMRdata(raw []byte) (Rdata, error) {
	if len(raw) < 5 {
		return nil, newFormatError("NSEC3PARAM rdata truncated")
	}
	saltLen := int(raw[4])
	if 5+saltLen != len(raw) {
		return nil, newFormatError("NSEC3PARAM salt length mismatch")
	}
	return NSEC3PARAMRdata{
		HashAlgorithm: raw[0],
		Flags:         raw[1],
		Iterations:    uint16(raw[2])<<8 | uint16(raw[3]),
		Salt:          append([]byte(nil), raw[5:]...),
	}, nil
}
