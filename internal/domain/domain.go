package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

type Mode string

const (
	ModeOracle   Mode = "oracle"
	ModeAnalyzer Mode = "analyzer"
	ModeSignal   Mode = "signal"
)

var SupportedModes = []Mode{ModeOracle, ModeAnalyzer, ModeSignal}

func (m Mode) Valid() bool {
	for _, s := range SupportedModes {
		if m == s {
			return true
		}
	}
	return false
}

// ParseMode accepts the exact lower-case mode names only.
func ParseMode(s string) (Mode, bool) {
	m := Mode(s)
	return m, m.Valid()
}

func (m Mode) String() string { return string(m) }

// ModeList renders the supported modes as "a, b, atau c".
func ModeList() string {
	names := make([]string, len(SupportedModes))
	for i, m := range SupportedModes {
		names[i] = string(m)
	}
	return strings.Join(names[:len(names)-1], ", ") + ", atau " + names[len(names)-1]
}

// LedgerRecord is one row of the codex_entries relation.
type LedgerRecord struct {
	ID         RecordID `json:"id,omitempty"`
	UserInput  string   `json:"user_input"`
	AIMode     Mode     `json:"ai_mode"`
	AIResponse string   `json:"ai_response"`
	CodexHash  string   `json:"codex_hash"`
	Timestamp  string   `json:"timestamp"`
	Verified   bool     `json:"verified"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

// RecordID is the store-assigned row id. Stores may use serial integers or
// uuids, so both JSON numbers and strings are accepted and written back in
// the same form.
type RecordID string

func (id *RecordID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = RecordID(n.String())
	return nil
}

func (id RecordID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// numeric reports whether id is a canonical base-10 integer, so "007" and
// "+7" stay quoted.
func (id RecordID) numeric() bool {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == string(id)
}

type VerifyStatus string

const (
	StatusInvalid  VerifyStatus = "invalid"
	StatusVerified VerifyStatus = "verified"
)
