package wire

// Rdata is the tagged sum type discriminated by wire type code that the
// design notes call for: one variant per RR type, each implementing the
// same encode/decode contract, plus an Unknown case so an intermediary
// can forward a type this implementation does not understand.
type Rdata interface {
	Type() Rrtype
	// encode appends this rdata's wire bytes to b. b already has name
	// compression enabled when encoding as part of a full message.
	encode(b *Buffer) error
}

// decodeRdata dispatches on rtype to the matching variant's decoder. msg
// is the full message buffer positioned at the start of the rdata, which
// variants with compressible embedded names (NS/CNAME/PTR/SOA/MX) read
// directly so pointers can resolve anywhere in the message; all other
// variants are decoded from the exactly-rdlength raw slice.
func decodeRdata(rtype Rrtype, msg *Buffer, rdlength int) (Rdata, error) {
	switch rtype {
	case TypeNS, TypeCNAME, TypePTR:
		return decodeNameRdata(rtype, msg, rdlength)
	case TypeSOA:
		return decodeSOARdata(msg, rdlength)
	case TypeMX:
		return decodeMXRdata(msg, rdlength)
	}

	raw, err := msg.ReadBytes(rdlength)
	if err != nil {
		return nil, err
	}
	switch rtype {
	case TypeA:
		return decodeARdata(raw)
	case TypeAAAA:
		return decodeAAAARdata(raw)
	case TypeTXT:
		return decodeTXTRdata(raw)
	case TypeHINFO:
		return decodeHINFORdata(raw)
	case TypeOPT:
		return decodeOPTRdata(raw)
	case TypeTSIG:
		return decodeTSIGRdata(raw)
	case TypeDS:
		return decodeDSRdata(raw)
	case TypeDNSKEY:
		return decodeDNSKEYRdata(raw)
	case TypeRRSIG:
		return decodeRRSIGRdata(raw)
	case TypeNSEC:
		return decodeNSECRdata(raw)
	case TypeNSEC3:
		return decodeNSEC3Rdata(raw)
	case TypeNSEC3PARAM:
		return decodeNSEC3PARAMRdata(raw)
	default:
		return UnknownRdata{RRType: rtype, Raw: append([]byte(nil), raw...)}, nil
	}
}

// UnknownRdata preserves the opaque bytes of an RR type this
// implementation does not decode, so a forwarding intermediary can still
// relay it unchanged.
type UnknownRdata struct {
	RRType Rrtype
	Raw    []byte
}

func (r UnknownRdata) Type() Rrtype { return r.RRType }
func (r UnknownRdata) encode(b *Buffer) error {
	b.WriteBytes(r.Raw)
	return nil
}
