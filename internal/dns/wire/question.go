package wire

// Question is the single query carried in every request's question
// section: {qname, qtype, qclass}.
type Question struct {
	Name   Name
	Qtype  Rrtype
	Qclass Rclass
}

func (q Question) encode(b *Buffer) error {
	if err := b.WriteName(q.Name); err != nil {
		return err
	}
	b.WriteUint16(uint16(q.Qtype))
	b.WriteUint16(uint16(q.Qclass))
	return nil
}

func decodeQuestion(b *Buffer) (Question, error) {
	var q Question
	name, err := b.ReadName()
	if err != nil {
		return q, err
	}
	qtype, err := b.ReadUint16()
	if err != nil {
		return q, err
	}
	qclass, err := b.ReadUint16()
	if err != nil {
		return q, err
	}
	q.Name = name
	q.Qtype = Rrtype(qtype)
	q.Qclass = Rclass(qclass)
	return q, nil
}
