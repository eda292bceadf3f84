package publisher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
)

func TestEncode(t *testing.T) {
	at := time.Unix(1700000000, 0)
	stat := &store.Stat{StatID: 4, PlayerID: 2, GameID: 3, Counters: stats.Counters{Steals: 1}}

	values, err := encode(StatEvent{Type: "stat.created", Stat: stat}, at)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if values["type"] != "stat.created" {
		t.Fatalf("unexpected type %v", values["type"])
	}
	if values["timestamp"] != int64(1700000000) {
		t.Fatalf("unexpected timestamp %v", values["timestamp"])
	}

	var decoded struct {
		Type string         `json:"type"`
		Stat map[string]int `json:"stat"`
	}
	if err := json.Unmarshal([]byte(values["data"].(string)), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Stat["Stat_ID"] != 4 || decoded.Stat["Steals"] != 1 {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestNewRedisStreamPublisherDefaults(t *testing.T) {
	p := NewRedisStreamPublisher(nil)
	if p.stream != StatsStream || p.maxLen != 10000 {
		t.Fatalf("unexpected defaults %+v", p)
	}
}
