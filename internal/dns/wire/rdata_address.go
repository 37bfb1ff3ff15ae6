package wire

import "net"

// ARdata is a 4-octet IPv4 address record.
type ARdata struct {
	Addr net.IP
}

func (r ARdata) Type() Rrtype { return TypeA }

func (r ARdata) encode(b *Buffer) error {
	ip4 := r.Addr.To4()
	if ip4 == nil {
		return newFormatError("A rdata address %s is not IPv4", r.Addr)
	}
	b.WriteBytes(ip4)
	return nil
}

func decodeARdata(raw []byte) (Rdata, error) {
	if len(raw) != 4 {
		return nil, newFormatError("A rdata length %d, want 4", len(raw))
	}
	return ARdata{Addr: net.IP(append([]byte(nil), raw...))}, nil
}

// AAAARdata is a 16-octet IPv6 address record.
type AAAARdata struct {
	Addr net.IP
}

func (r AAAARdata) Type() Rrtype { return TypeAAAA }

func (r AAAARdata) encode(b *Buffer) error {
	ip16 := r.Addr.To16()
	if ip16 == nil || r.Addr.To4() != nil {
		return newFormatError("AAAA rdata address %s is not IPv6", r.Addr)
	}
	b.WriteBytes(ip16)
	return nil
}

func decodeAAAARdata(raw []byte) (Rdata, error) {
	if len(raw) != 16 {
		return nil, newFormatError("AAAA rdata length %d, want 16", len(raw))
	}
	return AAAARdata{Addr: net.IP(append([]byte(nil), raw...))}, nil
}
