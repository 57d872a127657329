package domain

// SolanaCoinGeckoID is the CoinGecko asset identifier used for price lookups.
const SolanaCoinGeckoID = "solana"

// SolanaMint is the wrapped SOL token address used for DexScreener pair lookups.
const SolanaMint = "So11111111111111111111111111111111111111112"

// PriceSnapshot is the latest USD price and 24h percentage change of an asset.
type PriceSnapshot struct {
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
}

// PairMetrics is the 24h volume and transaction count of the top trading pair.
type PairMetrics struct {
	Volume24h float64 `json:"volume24h"`
	Txns24h   int64   `json:"txns24h"`
}

// PairsPayload mirrors the subset of the DexScreener token response we read.
type PairsPayload struct {
	Pairs []Pair `json:"pairs"`
}

type Pair struct {
	Volume *PairVolume `json:"volume,omitempty"`
	Txns   *PairTxns   `json:"txns,omitempty"`
}

type PairVolume struct {
	H24 float64 `json:"h24"`
}

type PairTxns struct {
	H24 *TxnCount `json:"h24,omitempty"`
}

type TxnCount struct {
	Buys  int64 `json:"buys"`
	Sells int64 `json:"sells"`
}

// Metrics derives volume and buy+sell count from the first pair.
// A nil payload or an empty pair list yields zero metrics.
func (p *PairsPayload) Metrics() PairMetrics {
	if p == nil || len(p.Pairs) == 0 {
		return PairMetrics{}
	}
	top := p.Pairs[0]
	var m PairMetrics
	if top.Volume != nil {
		m.Volume24h = top.Volume.H24
	}
	if top.Txns != nil && top.Txns.H24 != nil {
		m.Txns24h = top.Txns.H24.Buys + top.Txns.H24.Sells
	}
	return m
}

// MarketData is the aggregated view handed to the synthesizer.
// HasRealData is false only when the price source failed.
type MarketData struct {
	Price       *PriceSnapshot
	Pairs       PairMetrics
	HasRealData bool
}

// CryptoData is the market summary echoed back to clients on generate.
type CryptoData struct {
	Price     float64  `json:"price"`
	Change24h float64  `json:"change24h"`
	Volume24h *float64 `json:"volume24h"`
}

// CryptoData returns nil when no price data was available.
func (m MarketData) CryptoData() *CryptoData {
	if !m.HasRealData || m.Price == nil {
		return nil
	}
	cd := &CryptoData{Price: m.Price.Price, Change24h: m.Price.Change24h}
	if m.Pairs.Volume24h > 0 {
		v := m.Pairs.Volume24h
		cd.Volume24h = &v
	}
	return cd
}
