package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-country-cache/country"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// LoadCountries loads a JSON array of country.Country records.
func LoadCountries(t *testing.T, path string) []country.Country {
	t.Helper()

	var countries []country.Country
	LoadFixtureJSON(t, path, &countries)
	return countries
}

// CompareWithGolden compares actual data with the golden file at path.
// If the golden file doesn't exist, it creates one with the actual data.
func CompareWithGolden(t *testing.T, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("Golden file %s does not exist, creating it", path)
			WriteGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// WriteGolden writes test output to a golden file.
func WriteGolden(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}

// SampleCountries returns a small catalog ordered by name. None is a favorite.
func SampleCountries() []country.Country {
	return []country.Country{
		{Name: "Chile", Capital: "Santiago", Region: "Americas", Population: 19116209, FlagURL: "https://flagcdn.com/cl.svg"},
		{Name: "Japan", Capital: "Tokyo", Region: "Asia", Population: 126000000, FlagURL: "https://flagcdn.com/jp.svg"},
		{Name: "Kenya", Capital: "Nairobi", Region: "Africa", Population: 53771300, FlagURL: "https://flagcdn.com/ke.svg"},
		{Name: "Slovakia", Capital: "Bratislava", Region: "Europe", Population: 5450000, FlagURL: "https://flagcdn.com/sk.svg"},
		{Name: "Slovenia", Capital: "Ljubljana", Region: "Europe", Population: 2100126, FlagURL: "https://flagcdn.com/si.svg"},
	}
}
