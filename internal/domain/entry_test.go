package domain

import (
	"testing"
	"time"
)

func TestEntryTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		datetime string
		want     time.Time
		ok       bool
	}{
		{"datetime-local", "2024-03-01T12:30", time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), true},
		{"with seconds", "2024-03-01T12:30:45", time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC), true},
		{"rfc3339", "2024-03-01T12:30:00Z", time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "yesterday", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TransactionEntry{Datetime: tt.datetime}.Timestamp()
			if ok != tt.ok {
				t.Fatalf("Timestamp() ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Timestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPairLabel(t *testing.T) {
	e := TransactionEntry{Base: "BTC", Quote: "USDT"}
	if got := e.PairLabel(); got != "BTC/USDT" {
		t.Errorf("PairLabel() = %q, want BTC/USDT", got)
	}
}
