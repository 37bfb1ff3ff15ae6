package resolve

// StateBlock is the per-request mutable state driving one resolution's
// state machine: Idle -> Transmitting(server_i) -> AwaitingResponse(server_i)
// -> {Accepted | RetryableFailure | FatalFailure | Escalate}. It is owned
// by the single resolution in progress and never shared across
// resolutions, unlike the ServerInfo handles it holds.
type StateBlock struct {
	Servers             []*ServerEntry
	CurrentServerIndex  int
	GlobalRemainingWork int
}

// newStateBlock builds a fresh StateBlock from cfg: one ServerEntry per
// configured server, each given RetransmissionLoopAttempts, and the
// global work counter seeded from GlobalRetransmissionLimit.
func newStateBlock(cfg *ResolverConfig) *StateBlock {
	entries := make([]*ServerEntry, len(cfg.NameServers))
	for i, info := range cfg.NameServers {
		entries[i] = newServerEntry(info, cfg.RetransmissionLoopAttempts)
	}
	return &StateBlock{
		Servers:             entries,
		GlobalRemainingWork: cfg.GlobalRetransmissionLimit,
	}
}

// current returns the ServerEntry the state machine is about to
// transmit to.
func (s *StateBlock) current() *ServerEntry {
	if len(s.Servers) == 0 {
		return nil
	}
	return s.Servers[s.CurrentServerIndex]
}

// advance moves to the next server, wrapping modulo the list length.
// It reports whether a full cycle has completed without finding a
// viable (non-exhausted) server.
func (s *StateBlock) advance() (cycleComplete bool) {
	start := s.CurrentServerIndex
	for i := 0; i < len(s.Servers); i++ {
		s.CurrentServerIndex = (s.CurrentServerIndex + 1) % len(s.Servers)
		if !s.current().exhausted() {
			return false
		}
		if s.CurrentServerIndex == start {
			return true
		}
	}
	return true
}

// anyHealthyAvailable reports whether some server still has attempts
// left and is healthy. runCycle uses this to decide whether an
// unhealthy server in the current() slot should still be skipped, or
// whether the cycle has run out of healthy servers and must fall back
// to it.
func (s *StateBlock) anyHealthyAvailable() bool {
	for _, e := range s.Servers {
		if !e.exhausted() && e.Info.Healthy() {
			return true
		}
	}
	return false
}

// resetServerBudgets replenishes every server's per-server counter at
// the start of a new cycle, per RFC 1536-inspired inter-cycle backoff.
func (s *StateBlock) resetServerBudgets(attempts int) {
	for _, e := range s.Servers {
		e.RemainingAttempts = attempts
	}
}

// decrementGlobal spends one unit of global work. It is called once
// before every transmission, including a UDP->TCP escalation attempt;
// server advances and timeouts do not spend budget on their own.
func (s *StateBlock) decrementGlobal() {
	s.GlobalRemainingWork--
}

// globalExhausted reports whether the unit just spent overdrew the
// budget, so a limit of L permits exactly L transmissions.
func (s *StateBlock) globalExhausted() bool {
	return s.GlobalRemainingWork < 0
}
