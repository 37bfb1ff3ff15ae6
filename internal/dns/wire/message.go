package wire

// ResourceRecord is {name, rtype, rclass, ttl, rdlength, rdata}.
// rdlength is not stored explicitly; it is always recomputed from rdata
// at encode time so the invariant "rdlength equals the encoded length of
// rdata" cannot drift.
type ResourceRecord struct {
	Name   Name
	Rtype  Rrtype
	Rclass Rclass
	TTL    uint32
	Rdata  Rdata
}

func (rr ResourceRecord) encode(b *Buffer) error {
	if err := b.WriteName(rr.Name); err != nil {
		return err
	}
	b.WriteUint16(uint16(rr.Rtype))
	b.WriteUint16(uint16(rr.Rclass))
	b.WriteUint32(rr.TTL)

	lenOffset := b.Position()
	b.WriteUint16(0) // placeholder, patched below
	rdataStart := b.Position()
	if err := rr.Rdata.encode(b); err != nil {
		return err
	}
	rdlength := b.Position() - rdataStart
	b.PatchUint16(lenOffset, uint16(rdlength))
	return nil
}

func decodeResourceRecord(b *Buffer) (ResourceRecord, error) {
	var rr ResourceRecord
	name, err := b.ReadName()
	if err != nil {
		return rr, err
	}
	rtype, err := b.ReadUint16()
	if err != nil {
		return rr, err
	}
	rclass, err := b.ReadUint16()
	if err != nil {
		return rr, err
	}
	ttl, err := b.ReadUint32()
	if err != nil {
		return rr, err
	}
	rdlength, err := b.ReadUint16()
	if err != nil {
		return rr, err
	}
	if b.remaining() < int(rdlength) {
		return rr, newFormatError("rdlength %d exceeds remaining %d bytes", rdlength, b.remaining())
	}
	rdata, err := decodeRdata(Rrtype(rtype), b, int(rdlength))
	if err != nil {
		return rr, err
	}
	rr.Name = name
	rr.Rtype = Rrtype(rtype)
	rr.Rclass = Rclass(rclass)
	rr.TTL = ttl
	rr.Rdata = rdata
	return rr, nil
}

// Message is a full DnsMessage: {header, question, answer[], authority[],
// additional[]}. Section counts are never stored independently; Encode
// always derives them from slice lengths so mutation can never leave
// counts disagreeing with their sections.
type Message struct {
	Header     Header
	Question   []Question
	Answer     []ResourceRecord
	Authority  []ResourceRecord
	Additional []ResourceRecord
}

// Encode serializes m with name compression enabled, and returns a
// freshly allocated byte slice (the Buffer is pooled internally).
func (m Message) Encode() ([]byte, error) {
	b := GetBuffer()
	defer PutBuffer(b)
	b.EnableCompression()

	h := m.Header
	h.QDCount = uint16(len(m.Question))
	h.ANCount = uint16(len(m.Answer))
	h.NSCount = uint16(len(m.Authority))
	h.ARCount = uint16(len(m.Additional))
	h.encode(b)

	for _, q := range m.Question {
		if err := q.encode(b); err != nil {
			return nil, err
		}
	}
	for _, section := range [][]ResourceRecord{m.Answer, m.Authority, m.Additional} {
		for _, rr := range section {
			if err := rr.encode(b); err != nil {
				return nil, err
			}
		}
	}
	return append([]byte(nil), b.Buf...), nil
}

// Decode parses raw wire bytes into a Message. Decoded names are always
// fully qualified regardless of whether the encoder used compression.
func Decode(raw []byte) (Message, error) {
	b := NewReader(raw)
	var m Message

	h, err := decodeHeader(b)
	if err != nil {
		return m, err
	}
	m.Header = h

	for i := uint16(0); i < h.QDCount; i++ {
		q, err := decodeQuestion(b)
		if err != nil {
			return Message{}, err
		}
		m.Question = append(m.Question, q)
	}
	for i := uint16(0); i < h.ANCount; i++ {
		rr, err := decodeResourceRecord(b)
		if err != nil {
			return Message{}, err
		}
		m.Answer = append(m.Answer, rr)
	}
	for i := uint16(0); i < h.NSCount; i++ {
		rr, err := decodeResourceRecord(b)
		if err != nil {
			return Message{}, err
		}
		m.Authority = append(m.Authority, rr)
	}
	for i := uint16(0); i < h.ARCount; i++ {
		rr, err := decodeResourceRecord(b)
		if err != nil {
			return Message{}, err
		}
		m.Additional = append(m.Additional, rr)
	}
	return m, nil
}

// FindOPT returns the first OPT pseudo-RR in the additional section, if
// any, along with its unpacked EDNS0 fields.
func (m Message) FindOPT() (rr ResourceRecord, opt OPTRdata, ok bool) {
	for _, r := range m.Additional {
		if r.Rtype != TypeOPT {
			continue
		}
		o, isOPT := r.Rdata.(OPTRdata)
		if !isOPT {
			continue
		}
		o.UDPPayloadSize = uint16(r.Rclass)
		o.ExtendedRcode, o.Version, o.DO, o.Z = OPTFromTTL(r.TTL)
		return r, o, true
	}
	return ResourceRecord{}, OPTRdata{}, false
}

// EffectiveRcode combines the base header rcode with an OPT extended
// rcode, per RFC 6891 §6.1.3.
func (m Message) EffectiveRcode() Rcode {
	_, opt, ok := m.FindOPT()
	if !ok {
		return m.Header.Rcode
	}
	return Rcode(uint16(opt.ExtendedRcode)<<4 | uint16(m.Header.Rcode))
}
