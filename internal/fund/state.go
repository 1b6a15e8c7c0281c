package fund

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"SpendQueue/internal/model"
)

// ErrCorruptedState means the state file parses under no known schema.
var ErrCorruptedState = errors.New("state file is corrupted")

// LoadResult says how the state was obtained.
type LoadResult struct {
	// Created is set when no file existed and a default state was returned.
	Created bool
	// Migrated names the legacy schema the document was upgraded from.
	Migrated string
}

// decoder turns a document in one schema into the current model.
type decoder struct {
	name   string
	decode func(data []byte) (*model.State, error)
}

// decoders are tried in order; the first is the current schema.
var decoders = []decoder{
	{name: "current", decode: decodeCurrent},
	{name: "single-queue", decode: decodeSingleQueue},
}

// LoadState reads the state file. A missing file yields the default state.
func LoadState(filePath string, now time.Time) (*model.State, LoadResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultState(now), LoadResult{Created: true}, nil
		}
		return nil, LoadResult{}, fmt.Errorf("read state: %w", err)
	}
	return DecodeState(data)
}

// DecodeState tries each known schema, newest first.
func DecodeState(data []byte) (*model.State, LoadResult, error) {
	var errs []error
	for i, d := range decoders {
		state, err := d.decode(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s schema: %w", d.name, err))
			continue
		}
		var res LoadResult
		if i > 0 {
			res.Migrated = d.name
		}
		return state, res, nil
	}
	return nil, LoadResult{}, fmt.Errorf("%w: %w", ErrCorruptedState, errors.Join(errs...))
}

func decodeCurrent(data []byte) (*model.State, error) {
	var state model.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the state atomically: a temp file in the same directory
// is written, synced and renamed over filePath.
func SaveState(filePath string, state *model.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp state: %w", err)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		cleanup()
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}
