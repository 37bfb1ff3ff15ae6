// Package wire implements the DNS wire format: bit-exact encoding and
// decoding of DnsMessage, name compression, the tagged Rdata variants, and
// the OPT/TSIG framing used by EDNS0 and transaction signatures.
//
// The type layout mirrors RFC 1035 plus the EDNS0 (RFC 6891), TSIG
// (RFC 8945) and DNSSEC (RFC 4034, RFC 5155) extensions enumerated in the
// project spec; it does not attempt full RFC coverage of every RR type in
// the IANA registry.
package wire

import "fmt"

// Rrtype is the 16-bit RR type code carried on the wire.
type Rrtype uint16

const (
	TypeNone Rrtype = 0
	TypeA    Rrtype = 1
	TypeNS   Rrtype = 2
	TypeCNAME Rrtype = 5
	TypeSOA  Rrtype = 6
	TypePTR  Rrtype = 12
	TypeHINFO Rrtype = 13
	TypeMX   Rrtype = 15
	TypeTXT  Rrtype = 16
	TypeAAAA Rrtype = 28
	TypeSRV  Rrtype = 33
	TypeDS   Rrtype = 43
	TypeRRSIG Rrtype = 46
	TypeNSEC Rrtype = 47
	TypeDNSKEY Rrtype = 48
	TypeNSEC3 Rrtype = 50
	TypeNSEC3PARAM Rrtype = 51
	TypeOPT  Rrtype = 41
	TypeTSIG Rrtype = 250
	TypeAXFR Rrtype = 252
	TypeANY  Rrtype = 255
)

func (t Rrtype) String() string {
	switch t {
	case TypeA:
		return "A"
	case TypeNS:
		return "NS"
	case TypeCNAME:
		return "CNAME"
	case TypeSOA:
		return "SOA"
	case TypePTR:
		return "PTR"
	case TypeHINFO:
		return "HINFO"
	case TypeMX:
		return "MX"
	case TypeTXT:
		return "TXT"
	case TypeAAAA:
		return "AAAA"
	case TypeSRV:
		return "SRV"
	case TypeDS:
		return "DS"
	case TypeRRSIG:
		return "RRSIG"
	case TypeNSEC:
		return "NSEC"
	case TypeDNSKEY:
		return "DNSKEY"
	case TypeNSEC3:
		return "NSEC3"
	case TypeNSEC3PARAM:
		return "NSEC3PARAM"
	case TypeOPT:
		return "OPT"
	case TypeTSIG:
		return "TSIG"
	case TypeAXFR:
		return "AXFR"
	case TypeANY:
		return "ANY"
	default:
		return fmt.Sprintf("TYPE%d", uint16(t))
	}
}

// ParseRrtype parses a mnemonic RR type name (as a dig-style CLI would
// accept on its command line) into its wire code. Unrecognized names
// return TypeNone and false.
func ParseRrtype(s string) (Rrtype, bool) {
	switch s {
	case "A":
		return TypeA, true
	case "NS":
		return TypeNS, true
	case "CNAME":
		return TypeCNAME, true
	case "SOA":
		return TypeSOA, true
	case "PTR":
		return TypePTR, true
	case "HINFO":
		return TypeHINFO, true
	case "MX":
		return TypeMX, true
	case "TXT":
		return TypeTXT, true
	case "AAAA":
		return TypeAAAA, true
	case "SRV":
		return TypeSRV, true
	case "DS":
		return TypeDS, true
	case "RRSIG":
		return TypeRRSIG, true
	case "NSEC":
		return TypeNSEC, true
	case "DNSKEY":
		return TypeDNSKEY, true
	case "NSEC3":
		return TypeNSEC3, true
	case "NSEC3PARAM":
		return TypeNSEC3PARAM, true
	case "TSIG":
		return TypeTSIG, true
	case "ANY":
		return TypeANY, true
	default:
		return TypeNone, false
	}
}

// Rclass is the 16-bit RR class code. IN is the class used for queries
// and cached records, ANY appears only on TSIG records, and others decode
// as opaque values.
type Rclass uint16

const (
	ClassIN Rclass = 1
	ClassANY Rclass = 255
)

// Opcode is the 4-bit header opcode.
type Opcode uint8

const (
	OpcodeQuery  Opcode = 0
	OpcodeIQuery Opcode = 1
	OpcodeStatus Opcode = 2
	OpcodeNotify Opcode = 4
	OpcodeUpdate Opcode = 5
)

// Rcode is the 4-bit base response code; extended codes live in the OPT
// pseudo-RR's TTL field (see OPTRdata.ExtendedRcode).
type Rcode uint8

const (
	RcodeNoError  Rcode = 0
	RcodeFormErr  Rcode = 1
	RcodeServFail Rcode = 2
	RcodeNXDomain Rcode = 3
	RcodeNotImp   Rcode = 4
	RcodeRefused  Rcode = 5
)

func (r Rcode) String() string {
	switch r {
	case RcodeNoError:
		return "NOERROR"
	case RcodeFormErr:
		return "FORMERR"
	case RcodeServFail:
		return "SERVFAIL"
	case RcodeNXDomain:
		return "NXDOMAIN"
	case RcodeNotImp:
		return "NOTIMP"
	case RcodeRefused:
		return "REFUSED"
	default:
		return fmt.Sprintf("RCODE%d", uint8(r))
	}
}

// OptionCode is an EDNS0 option code carried inside an OPT rdata.
type OptionCode uint16

const (
	OptionNSID        OptionCode = 3
	OptionPadding     OptionCode = 12
	OptionExtendedErr OptionCode = 15
	OptionZoneVersion OptionCode = 19
)

// EDECode is an Extended DNS Error info-code (RFC 8914). Values outside the
// enumerated range decode as their raw EDECode value.
type EDECode uint16

const (
	EDEOther              EDECode = 0
	EDEUnsupportedDNSKEY   EDECode = 1
	EDEUnsupportedDS       EDECode = 2
	EDEStaleAnswer         EDECode = 3
	EDEForgedAnswer        EDECode = 4
	EDEDNSSECIndeterminate EDECode = 5
	EDEDNSSECBogus         EDECode = 6
	EDESignatureExpired    EDECode = 7
	EDESignatureNotYetValid EDECode = 8
	EDEDNSKEYMissing       EDECode = 9
	EDERRSIGsMissing       EDECode = 10
	EDENoZoneKeyBit        EDECode = 11
	EDENSECMissing         EDECode = 12
	EDECachedError         EDECode = 13
	EDENotReady            EDECode = 14
	EDEBlocked             EDECode = 15
	EDECensored            EDECode = 16
	EDEFiltered            EDECode = 17
	EDEProhibited          EDECode = 18
	EDEStaleNXDomainAnswer EDECode = 19
	EDENotAuthoritative    EDECode = 20
	EDENotSupported        EDECode = 21
	EDENoReachableAuthority EDECode = 22
	EDENetworkError        EDECode = 23
	EDEInvalidData         EDECode = 24
)
