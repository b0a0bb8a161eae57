package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"procoon/internal/game"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Load(ctx, "missing"); !errors.Is(err, game.ErrSaveNotFound) {
		t.Fatalf("missing slot err got %v", err)
	}

	save := &game.SaveData{
		CompanyName: "Roundtrip Estates",
		Version:     game.SaveSchemaVersion,
		GameTime:    time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
		Finance:     game.Finance{Cash: 1_000_000},
	}
	if err := m.Save(ctx, "slot", save); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := m.Load(ctx, "slot")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.CompanyName != save.CompanyName || loaded.Finance.Cash != save.Finance.Cash {
		t.Fatalf("loaded save differs: %+v", loaded)
	}

	// Mutating the loaded copy must not leak into the stored document.
	loaded.Finance.Cash = 0
	again, err := m.Load(ctx, "slot")
	if err != nil {
		t.Fatal(err)
	}
	if again.Finance.Cash != 1_000_000 {
		t.Fatalf("stored document mutated: %d", again.Finance.Cash)
	}
}
