package nav

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/naviohq/navio/internal/types"
)

// FileStorage keeps the navigation state in one JSON file under the
// session state dir. Writes go through a temp file and rename so a
// crash never leaves a torn document.
type FileStorage struct {
	path string
}

func NewFileStorage(stateDir string) *FileStorage {
	return &FileStorage{path: filepath.Join(stateDir, "history.json")}
}

func (s *FileStorage) Load() (types.HistoryState, bool, error) {
	var state types.HistoryState
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, false, nil
		}
		return state, false, err
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, false, err
	}
	return state, true, nil
}

func (s *FileStorage) Save(state types.HistoryState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
