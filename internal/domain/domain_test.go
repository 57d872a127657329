package domain

import (
	"encoding/json"
	"testing"
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"oracle", "analyzer", "signal"} {
		if _, ok := ParseMode(s); !ok {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "Oracle", "trader"} {
		if _, ok := ParseMode(s); ok {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestModeList(t *testing.T) {
	if got := ModeList(); got != "oracle, analyzer, atau signal" {
		t.Fatalf("unexpected mode list: %s", got)
	}
}

func TestPairsPayloadMetrics(t *testing.T) {
	raw := `{"pairs":[{"volume":{"h24":1500000000},"txns":{"h24":{"buys":120,"sells":80}}},{"volume":{"h24":1}}]}`
	var p PairsPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m := p.Metrics()
	if m.Volume24h != 1.5e9 || m.Txns24h != 200 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestPairsPayloadMetricsEmpty(t *testing.T) {
	var nilPayload *PairsPayload
	if m := nilPayload.Metrics(); m != (PairMetrics{}) {
		t.Fatalf("expected zero metrics for nil payload, got %+v", m)
	}
	p := &PairsPayload{}
	if m := p.Metrics(); m != (PairMetrics{}) {
		t.Fatalf("expected zero metrics for empty pairs, got %+v", m)
	}

	var partial PairsPayload
	_ = json.Unmarshal([]byte(`{"pairs":[{"txns":{}}]}`), &partial)
	if m := partial.Metrics(); m != (PairMetrics{}) {
		t.Fatalf("expected zero metrics for missing fields, got %+v", m)
	}
}

func TestMarketDataCryptoData(t *testing.T) {
	if cd := (MarketData{}).CryptoData(); cd != nil {
		t.Fatalf("expected nil crypto data without real data, got %+v", cd)
	}

	md := MarketData{Price: &PriceSnapshot{Price: 150, Change24h: 2.5}, HasRealData: true}
	cd := md.CryptoData()
	if cd == nil || cd.Price != 150 || cd.Volume24h != nil {
		t.Fatalf("unexpected crypto data: %+v", cd)
	}

	md.Pairs.Volume24h = 42
	cd = md.CryptoData()
	if cd.Volume24h == nil || *cd.Volume24h != 42 {
		t.Fatalf("expected volume to be set, got %+v", cd)
	}

	data, _ := json.Marshal(MarketData{Price: &PriceSnapshot{Price: 1}, HasRealData: true}.CryptoData())
	if string(data) != `{"price":1,"change24h":0,"volume24h":null}` {
		t.Fatalf("unexpected JSON: %s", data)
	}
}

func TestRecordIDAcceptsNumbersAndStrings(t *testing.T) {
	var rec LedgerRecord
	if err := json.Unmarshal([]byte(`{"id":42,"codex_hash":"h"}`), &rec); err != nil {
		t.Fatalf("unmarshal numeric id: %v", err)
	}
	if rec.ID != "42" {
		t.Fatalf("expected id 42, got %q", rec.ID)
	}
	out, _ := json.Marshal(rec.ID)
	if string(out) != "42" {
		t.Fatalf("expected numeric id to marshal as number, got %s", out)
	}

	if err := json.Unmarshal([]byte(`{"id":"9b2f0c1e-7d1a-4c55-9a51-0f7c7a1c2b3d"}`), &rec); err != nil {
		t.Fatalf("unmarshal uuid id: %v", err)
	}
	out, _ = json.Marshal(rec.ID)
	if string(out) != `"9b2f0c1e-7d1a-4c55-9a51-0f7c7a1c2b3d"` {
		t.Fatalf("expected uuid to marshal as string, got %s", out)
	}
}

func TestLedgerRecordOmitsEmptyID(t *testing.T) {
	data, err := json.Marshal(LedgerRecord{UserInput: "q", AIMode: ModeOracle, CodexHash: "h", Timestamp: "t"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"user_input":"q","ai_mode":"oracle","ai_response":"","codex_hash":"h","timestamp":"t","verified":false}`
	if string(data) != want {
		t.Fatalf("unexpected JSON:\n got: %s\nwant: %s", data, want)
	}
}

func TestRecordIDNonCanonicalDigitsStayQuoted(t *testing.T) {
	tests := map[RecordID]string{
		"007":                  `"007"`,
		"+7":                   `"+7"`,
		"0":                    `0`,
		"-12":                  `-12`,
		"99999999999999999999": `"99999999999999999999"`,
	}
	for id, want := range tests {
		out, err := json.Marshal(LedgerRecord{ID: id})
		if err != nil {
			t.Fatalf("marshal %q: %v", id, err)
		}
		if !json.Valid(out) {
			t.Fatalf("invalid JSON for %q: %s", id, out)
		}
		got, _ := json.Marshal(id)
		if string(got) != want {
			t.Errorf("id %q expected %s, got %s", id, want, got)
		}
	}
}
