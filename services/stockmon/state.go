package stockmon

import (
	"encoding/json"
	"log/slog"
	"os"
)

// Observation is one product's availability snapshot at one check time.
// created once per check, never mutated afterwards.
type Observation struct {
	Available bool   `json:"available"`
	Price     string `json:"price,omitempty"`
	// ISO-8601 in the pinned market timezone
	LastChecked string `json:"last_checked"`
	StatusCode  int    `json:"status_code,omitempty"`
	Error       string `json:"error,omitempty"`
}

// RunState is the full persisted record: every product's latest
// observation plus run metadata. one per invocation.
type RunState struct {
	RunID             string                 `json:"run_id,omitempty"`
	LastRun           string                 `json:"last_run,omitempty"`
	RunCount          int                    `json:"run_count"`
	NotificationsSent int                    `json:"notifications_sent"`
	Products          map[string]Observation `json:"products"`
}

func emptyState() RunState {
	return RunState{Products: map[string]Observation{}}
}

type StateStore struct {
	path string
}

func NewStateStore(path string) StateStore {
	return StateStore{path: path}
}

// Load reads the persisted state. an absent or corrupt file is "no prior
// state", never an error: the run must proceed either way.
func (s StateStore) Load() RunState {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read state file, starting empty", "path", s.path, "err", err)
		}
		return emptyState()
	}

	var state RunState
	if err := json.Unmarshal(contents, &state); err != nil {
		slog.Warn("corrupt state file, starting empty", "path", s.path, "err", err)
		return emptyState()
	}
	if state.Products == nil {
		state.Products = map[string]Observation{}
	}
	return state
}

// Save overwrites the state file via a temp file + rename in the same
// directory, so a crash mid-write never leaves a half-written file behind.
func (s StateStore) Save(state RunState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
