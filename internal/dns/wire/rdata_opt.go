package wire

// OptOption is one EDNS0 option: {code, length, data}. Order is
// preserved across encode/decode.
type OptOption struct {
	Code OptionCode
	Data []byte
}

// EDEOption builds the opaque Data for an Extended DNS Error option
// (RFC 8914 §3): a u16 info-code followed by optional UTF-8 extra text.
func EDEOption(code EDECode, extraText string) OptOption {
	data := make([]byte, 2+len(extraText))
	data[0] = byte(code >> 8)
	data[1] = byte(code)
	copy(data[2:], extraText)
	return OptOption{Code: OptionExtendedErr, Data: data}
}

// DecodeEDE extracts the info-code and extra text from an EDE option's
// raw data. It is the caller's responsibility to check o.Code first.
func DecodeEDE(o OptOption) (EDECode, string, error) {
	if len(o.Data) < 2 {
		return 0, "", newFormatError("EDE option data shorter than 2 octets")
	}
	code := EDECode(uint16(o.Data[0])<<8 | uint16(o.Data[1]))
	return code, string(o.Data[2:]), nil
}

// ZoneVersionOption builds the opaque Data for a ZONEVERSION option: a
// label count, a type octet, and an opaque version. Semantics of the
// type/version fields are treated as an unvalidated pass-through per the
// design notes.
func ZoneVersionOption(labelCount, versionType byte, version []byte) OptOption {
	data := make([]byte, 2+len(version))
	data[0] = labelCount
	data[1] = versionType
	copy(data[2:], version)
	return OptOption{Code: OptionZoneVersion, Data: data}
}

// OPTRdata is the EDNS0 pseudo-RR payload. It is carried on a record
// whose name is root and whose rclass/ttl fields are repurposed: rclass
// holds the requestor UDP payload size, ttl encodes
// {extended-rcode:8, version:8, DO:1, Z:15}.
type OPTRdata struct {
	UDPPayloadSize uint16
	ExtendedRcode  uint8
	Version        uint8
	DO             bool
	Z              uint16
	Options        []OptOption
}

func (r OPTRdata) Type() Rrtype { return TypeOPT }

// TTL packs ExtendedRcode/Version/DO/Z into the repurposed ttl field.
func (r OPTRdata) TTL() uint32 {
	var z uint16 = r.Z &^ 0x8000
	if r.DO {
		z |= 0x8000
	}
	return uint32(r.ExtendedRcode)<<24 | uint32(r.Version)<<16 | uint32(z)
}

// OPTFromTTL unpacks a repurposed ttl field into its EDNS0 components.
func OPTFromTTL(ttl uint32) (extendedRcode, version uint8, do bool, z uint16) {
	extendedRcode = uint8(ttl >> 24)
	version = uint8(ttl >> 16)
	lower := uint16(ttl)
	do = lower&0x8000 != 0
	z = lower &^ 0x8000
	return
}

func (r OPTRdata) encode(b *Buffer) error {
	for _, o := range r.Options {
		b.WriteUint16(uint16(o.Code))
		b.WriteUint16(uint16(len(o.Data)))
		b.WriteBytes(o.Data)
	}
	return nil
}

func decodeOPTRdata(raw []byte) (Rdata, error) {
	var opts []OptOption
	pos := 0
	for pos < len(raw) {
		if pos+4 > len(raw) {
			return nil, newFormatError("OPT option header overruns rdata")
		}
		code := OptionCode(uint16(raw[pos])<<8 | uint16(raw[pos+1]))
		length := int(uint16(raw[pos+2])<<8 | uint16(raw[pos+3]))
		pos += 4
		if pos+length > len(raw) {
			return nil, newFormatError("OPT option data overruns rdata")
		}
		opts = append(opts, OptOption{Code: code, Data: append([]byte(nil), raw[pos:pos+length]...)})
		pos += length
	}
	// UDPPayloadSize/ExtendedRcode/Version/DO/Z are filled in by the
	// caller from the enclosing record's rclass/ttl fields, since they
	// are not part of rdata proper.
	return OPTRdata{Options: opts}, nil
}
