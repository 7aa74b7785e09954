// Package venue describes the prediction-market platforms the detector knows about.
package venue

import "strings"

// Kind is the market structure a venue uses.
type Kind string

const (
	KindCLOB        Kind = "clob"         // off-chain central limit order book
	KindOnchainCLOB Kind = "onchain_clob" // order book settled on a chain
	KindAMM         Kind = "amm"          // automated market maker pool
	KindSportsbook  Kind = "sportsbook"   // on-chain betting liquidity pool
)

// Venue is an immutable platform description.
type Venue struct {
	id        string
	name      string
	kind      Kind
	chain     string
	knownSafe bool
}

// New creates a venue. The id is normalized to lower case.
func New(id, name string, kind Kind, chain string, knownSafe bool) *Venue {
	return &Venue{
		id:        NormalizeID(id),
		name:      name,
		kind:      kind,
		chain:     chain,
		knownSafe: knownSafe,
	}
}

func (v *Venue) ID() string      { return v.id }
func (v *Venue) Name() string    { return v.name }
func (v *Venue) Kind() Kind      { return v.kind }
func (v *Venue) Chain() string   { return v.chain }
func (v *Venue) KnownSafe() bool { return v.knownSafe }

// OnChain reports whether trades settle on a chain and so pay gas.
func (v *Venue) OnChain() bool {
	return v.kind != KindCLOB || v.chain != ""
}

func (v *Venue) String() string {
	return v.id
}

// NormalizeID lower-cases and trims a platform identifier.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
