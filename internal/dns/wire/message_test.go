package wire

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip_SimpleQuery(t *testing.T) {
	name := MustName("example.com")
	msg := Message{
		Header: Header{ID: 0x04D2, Opcode: OpcodeQuery, RD: true},
		Question: []Question{
			{Name: name, Qtype: TypeA, Qclass: ClassIN},
		},
	}

	raw, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, msg.Header.ID, decoded.Header.ID)
	assert.Equal(t, msg.Header.Opcode, decoded.Header.Opcode)
	assert.True(t, decoded.Header.RD)
	assert.False(t, decoded.Header.QR)
	require.Len(t, decoded.Question, 1)
	assert.True(t, decoded.Question[0].Name.Equal(name))
	assert.Equal(t, TypeA, decoded.Question[0].Qtype)

	// header byte 2 (0-based: the first flags octet, right after the
	// 2-octet id) has RD as its low bit.
	assert.Equal(t, byte(1), raw[2]&0x01)
}

func TestRoundTrip_AnswerWithCompression(t *testing.T) {
	www := MustName("www.example.com")
	apex := MustName("example.com")

	msg := Message{
		Header: Header{ID: 1, QR: true, RD: true, RA: true},
		Question: []Question{
			{Name: www, Qtype: TypeA, Qclass: ClassIN},
		},
		Answer: []ResourceRecord{
			{Name: www, Rtype: TypeA, Rclass: ClassIN, TTL: 3600, Rdata: ARdata{Addr: net.ParseIP("93.184.216.34")}},
		},
		Authority: []ResourceRecord{
			{Name: apex, Rtype: TypeNS, Rclass: ClassIN, TTL: 3600, Rdata: NameRdata{RRType: TypeNS, Name: MustName("ns1.example.com")}},
		},
	}

	raw, err := msg.Encode()
	require.NoError(t, err)
	// Compression must have made the message shorter than if every name
	// were spelled out: the NS record's "example.com" suffix should
	// reuse the question's encoding.
	assert.Less(t, len(raw), 100)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, decoded.Answer, 1)
	assert.True(t, decoded.Answer[0].Name.Equal(www))
	a, ok := decoded.Answer[0].Rdata.(ARdata)
	require.True(t, ok)
	assert.Equal(t, "93.184.216.34", a.Addr.String())

	require.Len(t, decoded.Authority, 1)
	ns, ok := decoded.Authority[0].Rdata.(NameRdata)
	require.True(t, ok)
	assert.True(t, ns.Name.Equal(MustName("ns1.example.com")))

	assert.Equal(t, decoded.Header.ANCount, uint16(len(decoded.Answer)))
	assert.Equal(t, decoded.Header.NSCount, uint16(len(decoded.Authority)))
}

func TestNameCompression_FollowsValidBackwardPointer(t *testing.T) {
	// "www" terminated at offset 0-4, then at offset 5 a pointer back to
	// offset 0. Reading from offset 5 must yield "www.".
	b := NewReader([]byte{
		3, 'w', 'w', 'w', 0,
		0xC0, 0x00,
	})
	b.Seek(5)
	n, err := b.ReadName()
	require.NoError(t, err)
	assert.Equal(t, "www.", n.String())
}

func TestNameCompression_RejectsSelfReferencingPointer(t *testing.T) {
	// A pointer at offset 4 targeting offset 4 (itself): never strictly
	// backward relative to its own position, must be rejected outright.
	loop := NewReader([]byte{
		3, 'w', 'w', 'w',
		0xC0, 0x04,
	})
	loop.Seek(4)
	_, err := loop.ReadName()
	assert.ErrorIs(t, err, ErrFormat)
}

func TestNameCompression_RejectsCyclicPointerChain(t *testing.T) {
	// A single pointer at offset 4 back to offset 0, whose label "www"
	// runs straight back into that same pointer: every jump is "backward"
	// from where it is read, but the chain never terminates; the
	// jump-count backstop must catch it.
	cyclic := NewReader([]byte{
		3, 'w', 'w', 'w',
		0xC0, 0x00, // offset 4: pointer to 0
	})
	cyclic.Seek(4)
	_, err := cyclic.ReadName()
	assert.ErrorIs(t, err, ErrFormat)
}

func TestTypeBitMap_RoundTrip(t *testing.T) {
	m := NewTypeBitMap(TypeA, TypeMX, TypeAAAA, TypeRRSIG)
	b := GetBuffer()
	defer PutBuffer(b)
	m.encode(b)

	decoded, err := decodeTypeBitMap(b.Buf)
	require.NoError(t, err)
	for _, want := range []Rrtype{TypeA, TypeMX, TypeAAAA, TypeRRSIG} {
		assert.True(t, decoded.Has(want), "expected %s present", want)
	}
	assert.False(t, decoded.Has(TypeSOA))
}

func TestOPT_EDEOptionRoundTrip(t *testing.T) {
	opt := OPTRdata{
		UDPPayloadSize: 4096,
		DO:             true,
		Options: []OptOption{
			EDEOption(EDENoReachableAuthority, "at delegation nonexistent.com for nonexistent.com/a"),
		},
	}
	msg := Message{
		Header: Header{ID: 7, QR: true, Rcode: RcodeNXDomain},
		Question: []Question{
			{Name: MustName("nonexistent."), Qtype: TypeA, Qclass: ClassIN},
		},
		Additional: []ResourceRecord{
			{Name: RootName(), Rtype: TypeOPT, Rclass: Rclass(opt.UDPPayloadSize), TTL: opt.TTL(), Rdata: opt},
		},
	}

	raw, err := msg.Encode()
	require.NoError(t, err)
	decoded, err := Decode(raw)
	require.NoError(t, err)

	_, gotOPT, ok := decoded.FindOPT()
	require.True(t, ok)
	assert.True(t, gotOPT.DO)
	assert.Equal(t, uint16(4096), gotOPT.UDPPayloadSize)
	require.Len(t, gotOPT.Options, 1)
	code, text, err := DecodeEDE(gotOPT.Options[0])
	require.NoError(t, err)
	assert.Equal(t, EDENoReachableAuthority, code)
	assert.Equal(t, "at delegation nonexistent.com for nonexistent.com/a", text)
}

func TestTSIG_CanonicalLayout(t *testing.T) {
	rdata := TSIGRdata{
		Algorithm:  MustName("hmac-md5.sig-alg.reg.int"),
		TimeSigned: 123456789,
		Fudge:      1234,
		MAC:        []byte{0xA1, 0xB2, 0xC3, 0xD4},
		OriginalID: 7,
	}
	b := GetBuffer()
	defer PutBuffer(b)
	require.NoError(t, rdata.encode(b))

	decoded, err := decodeTSIGRdata(b.Buf)
	require.NoError(t, err)
	tsig := decoded.(TSIGRdata)
	assert.True(t, tsig.Algorithm.Equal(rdata.Algorithm))
	assert.Equal(t, rdata.TimeSigned, tsig.TimeSigned)
	assert.Equal(t, rdata.Fudge, tsig.Fudge)
	assert.Equal(t, rdata.MAC, tsig.MAC)
}

func TestRdlengthOverflow_IsFormatError(t *testing.T) {
	b := NewReader([]byte{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // header, no sections claimed yet
	})
	_, err := decodeHeader(b)
	require.NoError(t, err)

	malformed := NewReader([]byte{
		7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 0, // name "example."
		0, 1, // type A
		0, 1, // class IN
		0, 0, 0, 0, // ttl
		0xFF, 0xFF, // rdlength way beyond remaining
	})
	_, err = decodeResourceRecord(malformed)
	assert.ErrorIs(t, err, ErrFormat)
}
