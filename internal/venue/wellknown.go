package venue

// Well-known platform ids.
const (
	IDKalshi     = "kalshi"
	IDPolymarket = "polymarket"
	IDPredictIt  = "predictit"
	IDManifold   = "manifold"
	IDLimitless  = "limitless"
	IDAzuro      = "azuro"
	IDSXBet      = "sx_bet"
	IDOvertime   = "overtime"
)

// DefaultRegistry returns a registry pre-populated with the supported venues.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(New(IDKalshi, "Kalshi", KindCLOB, "", true))
	r.Register(New(IDPolymarket, "Polymarket", KindOnchainCLOB, "polygon", true))
	r.Register(New(IDPredictIt, "PredictIt", KindCLOB, "", false))
	r.Register(New(IDManifold, "Manifold", KindAMM, "", false))
	r.Register(New(IDLimitless, "Limitless", KindOnchainCLOB, "base", false))
	r.Register(New(IDAzuro, "Azuro", KindSportsbook, "gnosis", false))
	r.Register(New(IDSXBet, "SX Bet", KindOnchainCLOB, "sx", false))
	r.Register(New(IDOvertime, "Overtime", KindAMM, "optimism", false))
	return r
}
