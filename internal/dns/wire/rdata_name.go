package wire

// NameRdata covers NS, CNAME and PTR: a single compressible domain name.
type NameRdata struct {
	RRType Rrtype
	Name   Name
}

func (r NameRdata) Type() Rrtype { return r.RRType }

func (r NameRdata) encode(b *Buffer) error {
	return b.WriteName(r.Name)
}

func decodeNameRdata(rtype Rrtype, msg *Buffer, rdlength int) (Rdata, error) {
	start := msg.Position()
	name, err := msg.ReadName()
	if err != nil {
		return nil, err
	}
	if msg.Position()-start != rdlength {
		return nil, newFormatError("%s rdata consumed %d octets, rdlength says %d", rtype, msg.Position()-start, rdlength)
	}
	return NameRdata{RRType: rtype, Name: name}, nil
}

// SOARdata is the start-of-authority record: two domain names plus five
// u32 timing fields. Its MINIMUM field doubles as the negative-caching
// TTL for the zone.
type SOARdata struct {
	MName   Name
	RName   Name
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (r SOARdata) Type() Rrtype { return TypeSOA }

func (r SOARdata) encode(b *Buffer) error {
	if err := b.WriteName(r.MName); err != nil {
		return err
	}
	if err := b.WriteName(r.RName); err != nil {
		return err
	}
	b.WriteUint32(r.Serial)
	b.WriteUint32(r.Refresh)
	b.WriteUint32(r.Retry)
	b.WriteUint32(r.Expire)
	b.WriteUint32(r.Minimum)
	return nil
}

func decodeSOARdata(msg *Buffer, rdlength int) (Rdata, error) {
	start := msg.Position()
	mname, err := msg.ReadName()
	if err != nil {
		return nil, err
	}
	rname, err := msg.ReadName()
	if err != nil {
		return nil, err
	}
	var r SOARdata
	r.MName, r.RName = mname, rname
	if r.Serial, err = msg.ReadUint32(); err != nil {
		return nil, err
	}
	if r.Refresh, err = msg.ReadUint32(); err != nil {
		return nil, err
	}
	if r.Retry, err = msg.ReadUint32(); err != nil {
		return nil, err
	}
	if r.Expire, err = msg.ReadUint32(); err != nil {
		return nil, err
	}
	if r.Minimum, err = msg.ReadUint32(); err != nil {
		return nil, err
	}
	if msg.Position()-start != rdlength {
		return nil, newFormatError("SOA rdata consumed %d octets, rdlength says %d", msg.Position()-start, rdlength)
	}
	return r, nil
}

// MXRdata is a mail-exchange record: preference plus exchange name.
type MXRdata struct {
	Preference uint16
	Exchange   Name
}

func (r MXRdata) Type() Rrtype { return TypeMX }

func (r MXRdata) encode(b *Buffer) error {
	b.WriteUint16(r.Preference)
	return b.WriteName(r.Exchange)
}

func decodeMXRdata(msg *Buffer, rdlength int) (Rdata, error) {
	start := msg.Position()
	pref, err := msg.ReadUint16()
	if err != nil {
		return nil, err
	}
	name, err := msg.ReadName()
	if err != nil {
		return nil, err
	}
	if msg.Position()-start != rdlength {
		return nil, newFormatError("MX rdata consumed %d octets, rdlength says %d", msg.Position()-start, rdlength)
	}
	return MXRdata{Preference: pref, Exchange: name}, nil
}
