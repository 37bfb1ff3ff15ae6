package wire

// Header is the fixed 12-octet DNS message header. Flags are laid out as
// two octets after the id: [QR|OPCODE(4)|AA|TC|RD] then
// [RA|Z|AD|CD|RCODE(4)]. Z is reserved and distinct from the DNSSEC AD/CD
// bits; it MUST be zero on send.
type Header struct {
	ID uint16

	QR     bool
	Opcode Opcode
	AA     bool
	TC     bool
	RD     bool

	RA    bool
	Z     bool
	AD    bool
	CD    bool
	Rcode Rcode

	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

func (h Header) encode(b *Buffer) {
	b.WriteUint16(h.ID)

	var flags1 byte
	if h.QR {
		flags1 |= 0x80
	}
	flags1 |= byte(h.Opcode&0x0F) << 3
	if h.AA {
		flags1 |= 0x04
	}
	if h.TC {
		flags1 |= 0x02
	}
	if h.RD {
		flags1 |= 0x01
	}

	var flags2 byte
	if h.RA {
		flags2 |= 0x80
	}
	// Z is always written as zero regardless of h.Z per the wire invariant.
	if h.AD {
		flags2 |= 0x20
	}
	if h.CD {
		flags2 |= 0x10
	}
	flags2 |= byte(h.Rcode & 0x0F)

	b.WriteByte(flags1)
	b.WriteByte(flags2)
	b.WriteUint16(h.QDCount)
	b.WriteUint16(h.ANCount)
	b.WriteUint16(h.NSCount)
	b.WriteUint16(h.ARCount)
}

func decodeHeader(b *Buffer) (Header, error) {
	var h Header
	var err error
	if h.ID, err = b.ReadUint16(); err != nil {
		return h, err
	}
	flags1, err := b.ReadByte()
	if err != nil {
		return h, err
	}
	flags2, err := b.ReadByte()
	if err != nil {
		return h, err
	}

	h.QR = flags1&0x80 != 0
	h.Opcode = Opcode(flags1 >> 3 & 0x0F)
	h.AA = flags1&0x04 != 0
	h.TC = flags1&0x02 != 0
	h.RD = flags1&0x01 != 0

	h.RA = flags2&0x80 != 0
	h.Z = flags2&0x40 != 0
	h.AD = flags2&0x20 != 0
	h.CD = flags2&0x10 != 0
	h.Rcode = Rcode(flags2 & 0x0F)

	if h.QDCount, err = b.ReadUint16(); err != nil {
		return h, err
	}
	if h.ANCount, err = b.ReadUint16(); err != nil {
		return h, err
	}
	if h.NSCount, err = b.ReadUint16(); err != nil {
		return h, err
	}
	if h.ARCount, err = b.ReadUint16(); err != nil {
		return h, err
	}
	return h, nil
}
