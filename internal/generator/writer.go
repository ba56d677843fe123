package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	identitiesFile = "identities.json"
	followsFile    = "follows.json"
)

// WriteDataset serializes the dataset into identities.json and follows.json under the provided directory.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, identitiesFile), dataset.Identities); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, followsFile), dataset.Follows)
}

// ReadDataset loads a dataset previously written by WriteDataset.
func ReadDataset(dir string) (Dataset, error) {
	var dataset Dataset
	if err := readJSON(filepath.Join(dir, identitiesFile), &dataset.Identities); err != nil {
		return Dataset{}, err
	}
	if err := readJSON(filepath.Join(dir, followsFile), &dataset.Follows); err != nil {
		return Dataset{}, err
	}
	return dataset, nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, dst any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(dst); err != nil {
		return fmt.Errorf("decode json from %s: %w", path, err)
	}
	return nil
}
