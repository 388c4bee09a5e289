package export

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

// WriteBundle writes run into dir as metadata.json, which carries everything
// but the samples, and states.csv. dir is created if needed.
func WriteBundle(dir string, run *Run) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	meta := *run
	meta.Trajectory = nil
	if err := writeFile(filepath.Join(dir, metadataFile), func(f *os.File) error {
		return WriteJSON(f, &meta)
	}); err != nil {
		return err
	}

	if run.Trajectory == nil {
		return nil
	}
	return writeFile(filepath.Join(dir, statesFile), func(f *os.File) error {
		return WriteCSV(f, run.Trajectory)
	})
}

// ReadBundle reads a directory written by WriteBundle. Solver statistics
// are not part of the CSV and come back zero.
func ReadBundle(dir string) (*Run, error) {
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, statesFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &run, nil
		}
		return nil, err
	}
	defer f.Close()

	tr, err := ReadCSV(f)
	if err != nil {
		return nil, err
	}
	tr.Complete = run.Error == ""
	run.Trajectory = tr
	return &run, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
