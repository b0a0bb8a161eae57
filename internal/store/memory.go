package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"procoon/internal/game"
)

// Memory is a process-local store for tests and throwaway sandboxes.
// Documents round-trip through JSON so callers never share pointers
// with the stored copy.
type Memory struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{slots: map[string][]byte{}}
}

func (m *Memory) Load(_ context.Context, slot string) (*game.SaveData, error) {
	m.mu.RLock()
	raw, ok := m.slots[slot]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: slot %s", game.ErrSaveNotFound, slot)
	}
	var save game.SaveData
	if err := json.Unmarshal(raw, &save); err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrSaveCorrupt, err)
	}
	return &save, nil
}

func (m *Memory) Save(_ context.Context, slot string, save *game.SaveData) error {
	raw, err := json.Marshal(save)
	if err != nil {
		return fmt.Errorf("encode save %s: %w", slot, err)
	}
	m.mu.Lock()
	m.slots[slot] = raw
	m.mu.Unlock()
	return nil
}
