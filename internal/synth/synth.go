// Package synth renders market data into the oracle, analyzer and signal
// messages. Everything here is pure except the volume spike draw, which goes
// through an injected Rand.
package synth

import (
	"fmt"
	"math"
	"math/big"
	"math/rand/v2"
	"strconv"

	"codex-ledger/internal/domain"
)

const (
	OracleOffline   = "Koneksi ke oracle terputus. Data pasar tidak tersedia. Silakan coba lagi."
	AnalyzerOffline = "Analyzer offline. Data teknikal tidak dapat diakses. Silakan coba lagi."
	SignalOffline   = "OFFLINE: Signal system tidak tersedia. Monitoring dihentikan sementara."
)

// Rand supplies the volume spike draw. IntN returns a value in [0, n).
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the unseeded math/rand/v2 source.
var DefaultRand Rand = globalRand{}

// Forecast is the oracle projection for one price/change pair.
type Forecast struct {
	Direction  Trend
	Timeframe  string
	TargetLow  float64
	TargetHigh float64
	Confidence float64
}

func NewForecast(price, change24h float64) Forecast {
	abs := math.Abs(change24h)

	direction := TrendSideways
	if change24h > 0 {
		direction = TrendUp
	} else if change24h < -1 {
		direction = TrendDown
	}

	timeframe := "24h"
	if abs > 3 {
		timeframe = "4h"
	} else if abs > 1 {
		timeframe = "12h"
	}

	return Forecast{
		Direction:  direction,
		Timeframe:  timeframe,
		TargetLow:  round2(price * (1 + change24h/100*0.8)),
		TargetHigh: round2(price * (1 + change24h/100*1.2)),
		Confidence: clamp(70+abs*3, 60, 95),
	}
}

// Generate dispatches on mode. Without real data each mode returns its
// fixed offline message.
func Generate(mode domain.Mode, md domain.MarketData, rnd Rand) string {
	switch mode {
	case domain.ModeOracle:
		return Oracle(md)
	case domain.ModeAnalyzer:
		return Analyzer(md)
	case domain.ModeSignal:
		return Signal(md, rnd)
	default:
		return ""
	}
}

func Oracle(md domain.MarketData) string {
	if !md.HasRealData || md.Price == nil {
		return OracleOffline
	}
	price, change := md.Price.Price, md.Price.Change24h
	f := NewForecast(price, change)

	sign := ""
	if change > 0 {
		sign = "+"
	}
	return fmt.Sprintf("Solana saat ini $%s (%s%s%%). Prediksi: %s %s | Target: $%s-%s | Confidence: %s%%",
		toFixed(price, 2), sign, toFixed(change, 1), f.Direction, f.Timeframe,
		toFixed(f.TargetLow, 2), toFixed(f.TargetHigh, 2), toFixed(math.Round(f.Confidence), 0))
}

func Analyzer(md domain.MarketData) string {
	if !md.HasRealData || md.Price == nil {
		return AnalyzerOffline
	}
	change := md.Price.Change24h
	rsi := RSI(change)

	volume := "N/A"
	if md.Pairs.Volume24h > 0 {
		volume = "$" + toFixed(md.Pairs.Volume24h/1e9, 2) + "B"
	}
	txns := "N/A"
	if md.Pairs.Txns24h > 0 {
		txns = formatThousands(md.Pairs.Txns24h)
	}

	return fmt.Sprintf("Solana volume: %s (24h). Txns: %s. Trend: %s. RSI: %d (%s)",
		volume, txns, TrendOf(change), rsi, SentimentOf(rsi))
}

func Signal(md domain.MarketData, rnd Rand) string {
	if !md.HasRealData || md.Price == nil {
		return SignalOffline
	}
	if rnd == nil {
		rnd = DefaultRand
	}
	price, change := md.Price.Price, md.Price.Change24h
	rsi := RSI(change)

	return fmt.Sprintf("ALERT: Volume spike %d%% | Price momentum: %s | Action: %s $%s | RSI: %d",
		VolumeSpike(change, rnd), Momentum(change), Action(rsi, change), toFixed(price, 2), rsi)
}

// VolumeSpike draws from [200,400) on moves above 5%, otherwise [50,150).
func VolumeSpike(change24h float64, rnd Rand) int {
	if math.Abs(change24h) > 5 {
		return 200 + rnd.IntN(200)
	}
	return 50 + rnd.IntN(100)
}

// toFixed formats x with prec decimals, rounding exact ties away from zero.
// strconv rounds ties to even, so 150.125 would otherwise render as 150.12.
func toFixed(x float64, prec int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) || prec > 22 {
		return strconv.FormatFloat(x, 'f', prec, 64)
	}
	scaled := new(big.Float).SetPrec(256).SetFloat64(math.Abs(x))
	scaled.Mul(scaled, new(big.Float).SetPrec(256).SetFloat64(math.Pow10(prec)))
	whole, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(256).Sub(scaled, new(big.Float).SetPrec(256).SetInt(whole))
	if frac.Cmp(big.NewFloat(0.5)) != 0 {
		return strconv.FormatFloat(x, 'f', prec, 64)
	}

	digits := whole.Add(whole, big.NewInt(1)).String()
	if prec > 0 {
		for len(digits) <= prec {
			digits = "0" + digits
		}
		digits = digits[:len(digits)-prec] + "." + digits[len(digits)-prec:]
	}
	if x < 0 {
		digits = "-" + digits
	}
	return digits
}

func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
