package network

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "network.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `{
  "warehouses": [
    {"id": "WH-AMS", "name": "Amsterdam", "country_code": "NL", "coordinates": {"lat": 52.37, "lng": 4.90}}
  ],
  "carriers": [
    {"id": "CARR-DHL", "name": "DHL", "mode": "road", "service_countries": ["NL", "DE"]}
  ]
}`

func TestLoad(t *testing.T) {
	n, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(n.Warehouses) != 1 || n.Warehouses[0].ID != "WH-AMS" {
		t.Fatalf("unexpected warehouses: %+v", n.Warehouses)
	}
	if len(n.Carriers) != 1 || n.Carriers[0].ID != "CARR-DHL" {
		t.Fatalf("unexpected carriers: %+v", n.Carriers)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad json":      `{`,
		"no warehouses": `{"warehouses": [], "carriers": [{"id": "C", "mode": "road", "service_countries": ["DE"]}]}`,
		"no carriers":   `{"warehouses": [{"id": "W"}], "carriers": []}`,
		"dup warehouse": `{"warehouses": [{"id": "W"}, {"id": "W"}], "carriers": [{"id": "C", "mode": "road", "service_countries": ["DE"]}]}`,
		"unknown mode":  `{"warehouses": [{"id": "W"}], "carriers": [{"id": "C", "mode": "drone", "service_countries": ["DE"]}]}`,
		"no countries":  `{"warehouses": [{"id": "W"}], "carriers": [{"id": "C", "mode": "road", "service_countries": []}]}`,
		"empty carrier": `{"warehouses": [{"id": "W"}], "carriers": [{"id": "", "mode": "road", "service_countries": ["DE"]}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
