package synth

import "math"

type Trend string

const (
	TrendStrongUp   Trend = "STRONG UPTREND"
	TrendUp         Trend = "UPTREND"
	TrendSideways   Trend = "SIDEWAYS"
	TrendDown       Trend = "DOWNTREND"
	TrendStrongDown Trend = "STRONG DOWNTREND"
)

// RSI maps the 24h change onto 0..100 as 50 + 2*change. It is not the
// Wilder indicator.
func RSI(change24h float64) int {
	return int(math.Round(clamp(50+change24h*2, 0, 100)))
}

// TrendOf uses exclusive thresholds: exactly +3% is UPTREND.
func TrendOf(change24h float64) Trend {
	switch {
	case change24h > 3:
		return TrendStrongUp
	case change24h > 1:
		return TrendUp
	case change24h > -1:
		return TrendSideways
	case change24h > -3:
		return TrendDown
	default:
		return TrendStrongDown
	}
}

func SentimentOf(rsi int) string {
	switch {
	case rsi >= 70:
		return "Bullish (Overbought)"
	case rsi >= 60:
		return "Bullish"
	case rsi >= 40:
		return "Neutral"
	case rsi >= 30:
		return "Bearish"
	default:
		return "Bearish (Oversold)"
	}
}

// Momentum buckets |change|: >5 STRONG, >3 BUILDING, <1 WEAK, else MODERATE.
func Momentum(change24h float64) string {
	abs := math.Abs(change24h)
	switch {
	case abs > 5:
		return "STRONG"
	case abs > 3:
		return "BUILDING"
	case abs < 1:
		return "WEAK"
	default:
		return "MODERATE"
	}
}

func Action(rsi int, change24h float64) string {
	switch {
	case rsi > 70:
		return "TAKE PROFIT"
	case rsi < 30:
		return "BUY DIP"
	case change24h > 2:
		return "WATCH"
	default:
		return "HOLD"
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
