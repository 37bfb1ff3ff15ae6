package wire

// TSIGRdata is the transaction-signature record (RFC 8945): an
// algorithm name, a 48-bit signing time, a fudge window, the MAC itself,
// the original query id, an error code, and opaque "other" data. The
// algorithm name and any embedded names are never compressed.
type TSIGRdata struct {
	Algorithm  Name
	TimeSigned uint64 // low 48 bits significant
	Fudge      uint16
	MAC        []byte
	OriginalID uint16
	Error      uint16
	Other      []byte
}

func (r TSIGRdata) Type() Rrtype { return TypeTSIG }

func (r TSIGRdata) encode(b *Buffer) error {
	if err := writeUncompressedName(b, r.Algorithm); err != nil {
		return err
	}
	b.WriteByte(byte(r.TimeSigned >> 40))
	b.WriteByte(byte(r.TimeSigned >> 32))
	b.WriteUint32(uint32(r.TimeSigned))
	b.WriteUint16(r.Fudge)
	b.WriteUint16(uint16(len(r.MAC)))
	b.WriteBytes(r.MAC)
	b.WriteUint16(r.OriginalID)
	b.WriteUint16(r.Error)
	b.WriteUint16(uint16(len(r.Other)))
	b.WriteBytes(r.Other)
	return nil
}

func decodeTSIGRdata(raw []byte) (Rdata, error) {
	name, rest, err := readUncompressedName(raw)
	if err != nil {
		return nil, err
	}
	if len(rest) < 10 {
		return nil, newFormatError("TSIG rdata truncated before time/fudge/mac-size")
	}
	timeSigned := uint64(rest[0])<<40 | uint64(rest[1])<<32 | uint64(rest[2])<<24 |
		uint64(rest[3])<<16 | uint64(rest[4])<<8 | uint64(rest[5])
	fudge := uint16(rest[6])<<8 | uint16(rest[7])
	macSize := int(uint16(rest[8])<<8 | uint16(rest[9]))
	rest = rest[10:]
	if len(rest) < macSize {
		return nil, newFormatError("TSIG mac overruns rdata")
	}
	mac := append([]byte(nil), rest[:macSize]...)
	rest = rest[macSize:]
	if len(rest) < 6 {
		return nil, newFormatError("TSIG rdata truncated before original-id/error/other-len")
	}
	origID := uint16(rest[0])<<8 | uint16(rest[1])
	errCode := uint16(rest[2])<<8 | uint16(rest[3])
	otherLen := int(uint16(rest[4])<<8 | uint16(rest[5]))
	rest = rest[6:]
	if len(rest) != otherLen {
		return nil, newFormatError("TSIG other-len %d does not match remaining %d octets", otherLen, len(rest))
	}
	return TSIGRdata{
		Algorithm:  name,
		TimeSigned: timeSigned,
		Fudge:      fudge,
		MAC:        mac,
		OriginalID: origID,
		Error:      errCode,
		Other:      append([]byte(nil), rest...),
	}, nil
}
