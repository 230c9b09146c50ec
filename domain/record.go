package domain

import "slices"

// Record is one completed collective action on the ledger. Signing sessions
// and voting polls both satisfy it, so the reconciliation engine only ever
// deals with this shape.
type Record interface {
	ID() uint64
	CompletionHeight() uint64
	Participated(address string) bool
}

// SigningSession is a multi-party signing round run by the multisig contract.
// Participants are the verifiers that submitted a signature.
type SigningSession struct {
	SessionID   uint64
	CompletedAt uint64
	ExpiresAt   uint64
	Completed   bool
	Signers     []string
}

func (s *SigningSession) ID() uint64 {
	return s.SessionID
}

// CompletionHeight falls back to the expiry height for sessions that never
// completed, so that expired sessions still land in the right epoch.
func (s *SigningSession) CompletionHeight() uint64 {
	if s.Completed && s.CompletedAt > 0 {
		return s.CompletedAt
	}
	return s.ExpiresAt
}

func (s *SigningSession) Participated(address string) bool {
	return slices.Contains(s.Signers, address)
}

// Poll is a resolved vote run by the voting verifier contract. Participants
// are the verifiers that cast a vote before the poll expired.
type Poll struct {
	PollID    uint64
	ExpiresAt uint64
	Finished  bool
	Voters    []string
}

func (p *Poll) ID() uint64 {
	return p.PollID
}

func (p *Poll) CompletionHeight() uint64 {
	return p.ExpiresAt
}

func (p *Poll) Participated(address string) bool {
	return slices.Contains(p.Voters, address)
}
