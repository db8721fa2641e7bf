package server

import (
	"errors"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// DatasetConfig is the dataset registry: which dataset ids the GUI knows
// about, which of them resolve through external services, and which are
// authoritative for their document family. Indexed datasets are the known
// ones that are not external.
type DatasetConfig struct {
	KnownDatasets         []string `yaml:"known_datasets"`
	ExternalDatasets      []string `yaml:"external_datasets"`
	AuthoritativeDatasets []string `yaml:"authoritative_datasets"`
	Snapshot              string   `yaml:"snapshot"`
}

func (c DatasetConfig) IndexedDatasets() []string {
	var out []string
	for _, ds := range c.KnownDatasets {
		if !slices.Contains(c.ExternalDatasets, ds) {
			out = append(out, ds)
		}
	}
	return out
}

func (c DatasetConfig) IsKnown(dataset string) bool {
	return slices.Contains(c.KnownDatasets, dataset)
}

func (c DatasetConfig) IsExternal(dataset string) bool {
	return slices.Contains(c.ExternalDatasets, dataset)
}

func ParseDatasetConfigYAML(b []byte) (DatasetConfig, error) {
	var c DatasetConfig
	if err := yaml.Unmarshal(b, &c); err != nil {
		return DatasetConfig{}, err
	}
	if len(c.KnownDatasets) == 0 {
		return DatasetConfig{}, errors.New("datasets: known_datasets empty")
	}
	for _, ds := range c.ExternalDatasets {
		if !slices.Contains(c.KnownDatasets, ds) {
			return DatasetConfig{}, errors.New("datasets: external dataset " + ds + " not in known_datasets")
		}
	}
	return c, nil
}

func LoadDatasetConfig(path string) (DatasetConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return DatasetConfig{}, err
	}
	return ParseDatasetConfigYAML(b)
}

func defaultDatasetConfigPath() (string, error) {
	path := "config/datasets.yaml"
	for range 8 {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = filepath.Join("..", path)
	}
	return "", errors.New("server: datasets config not found")
}
