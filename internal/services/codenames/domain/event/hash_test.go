package event

import (
	"testing"
	"time"
)

func TestEventHashStableAcrossPayloadFormatting(t *testing.T) {
	evt := Event{
		GameID:      "game-1",
		Type:        "hint.given",
		Timestamp:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		ActorType:   ActorTypePlayer,
		ActorID:     "sess-1",
		PayloadJSON: []byte(`{"word":"ocean","num":2}`),
	}
	a, err := EventHash(evt)
	if err != nil {
		t.Fatalf("EventHash: %v", err)
	}
	evt.PayloadJSON = []byte(`{ "num": 2, "word": "ocean" }`)
	b, err := EventHash(evt)
	if err != nil {
		t.Fatalf("EventHash: %v", err)
	}
	if a != b {
		t.Fatalf("hash changed with formatting: %s != %s", a, b)
	}

	evt.ActorID = "sess-2"
	c, err := EventHash(evt)
	if err != nil {
		t.Fatalf("EventHash: %v", err)
	}
	if c == a {
		t.Fatal("expected hash to depend on actor id")
	}
}

func TestChainHashDependsOnPredecessor(t *testing.T) {
	evt := Event{GameID: "game-1", Seq: 2, Hash: "abc"}
	first, err := ChainHash(evt, "")
	if err != nil {
		t.Fatalf("ChainHash: %v", err)
	}
	second, err := ChainHash(evt, "prev")
	if err != nil {
		t.Fatalf("ChainHash: %v", err)
	}
	if first == second {
		t.Fatal("expected chain hash to depend on prev hash")
	}
	if _, err := ChainHash(Event{GameID: "game-1"}, ""); err == nil {
		t.Fatal("expected error for missing event hash")
	}
}
