package wire

// TXTRdata is one or more character-strings, each a <len><bytes> with
// len <= 255.
type TXTRdata struct {
	Strings [][]byte
}

func (r TXTRdata) Type() Rrtype { return TypeTXT }

func (r TXTRdata) encode(b *Buffer) error {
	for _, s := range r.Strings {
		if len(s) > 255 {
			return newFormatError("TXT character-string of %d octets exceeds 255", len(s))
		}
		b.WriteByte(byte(len(s)))
		b.WriteBytes(s)
	}
	return nil
}

func decodeTXTRdata(raw []byte) (Rdata, error) {
	var strs [][]byte
	pos := 0
	for pos < len(raw) {
		n := int(raw[pos])
		pos++
		if pos+n > len(raw) {
			return nil, newFormatError("TXT character-string overruns rdata")
		}
		strs = append(strs, append([]byte(nil), raw[pos:pos+n]...))
		pos += n
	}
	return TXTRdata{Strings: strs}, nil
}

// HINFORdata carries two character-strings: cpu and os.
type HINFORdata struct {
	CPU string
	OS  string
}

func (r HINFORdata) Type() Rrtype { return TypeHINFO }

func (r HINFORdata) encode(b *Buffer) error {
	if len(r.CPU) > 255 || len(r.OS) > 255 {
		return newFormatError("HINFO character-string exceeds 255 octets")
	}
	b.WriteByte(byte(len(r.CPU)))
	b.WriteBytes([]byte(r.CPU))
	b.WriteByte(byte(len(r.OS)))
	b.WriteBytes([]byte(r.OS))
	return nil
}

func decodeHINFORdata(raw []byte) (Rdata, error) {
	if len(raw) < 1 {
		return nil, newFormatError("HINFO rdata truncated")
	}
	cpuLen := int(raw[0])
	if 1+cpuLen > len(raw) {
		return nil, newFormatError("HINFO cpu string overruns rdata")
	}
	cpu := string(raw[1 : 1+cpuLen])
	rest := raw[1+cpuLen:]
	if len(rest) < 1 {
		return nil, newFormatError("HINFO rdata truncated before os string")
	}
	osLen := int(rest[0])
	if 1+osLen > len(rest) {
		return nil, newFormatError("HINFO os string overruns rdata")
	}
	os := string(rest[1 : 1+osLen])
	return HINFORdata{CPU: cpu, OS: os}, nil
}
