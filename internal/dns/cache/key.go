package cache

import (
	"fmt"

	"github.com/poyrazK/resolvercore/internal/dns/wire"
)

// Key is either a Primary key (positive answers, scoped to a specific
// rtype) or a Secondary key (negative answers, scoped only to rclass and
// name since NXDOMAIN is independent of the queried type).
type Key struct {
	primary bool
	rtype   wire.Rrtype
	rclass  wire.Rclass
	name    string
}

// PrimaryKey builds a positive-answer cache key.
func PrimaryKey(rtype wire.Rrtype, rclass wire.Rclass, name wire.Name) Key {
	return Key{primary: true, rtype: rtype, rclass: rclass, name: canonical(name)}
}

// SecondaryKey builds a negative-answer cache key.
func SecondaryKey(rclass wire.Rclass, name wire.Name) Key {
	return Key{primary: false, rclass: rclass, name: canonical(name)}
}

// String returns a stable representation suitable as an external cache
// key (e.g. a Redis key suffix).
func (k Key) String() string {
	if k.primary {
		return fmt.Sprintf("primary:%d:%d:%s", k.rtype, k.rclass, k.name)
	}
	return fmt.Sprintf("secondary:%d:%s", k.rclass, k.name)
}

func canonical(n wire.Name) string {
	s := n.String()
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
