package appmanager

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadServiceSequenceSortsByStartOrder(t *testing.T) {
	t.Parallel()

	yamlBody := `services:
  - name: web
    start_order: 3
    config:
      port: 5001
  - name: logger
    start_order: 1
    config:
      folder_path: ./logs
  - name: jobs
    start_order: 2
    config:
      retention_days: 14
`
	path := filepath.Join(t.TempDir(), "services.yaml")
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("write temp yaml: %v", err)
	}

	configs, err := LoadServiceSequence(path)
	if err != nil {
		t.Fatalf("LoadServiceSequence: %v", err)
	}
	want := []string{"logger", "jobs", "web"}
	if len(configs) != len(want) {
		t.Fatalf("got %d services, want %d", len(configs), len(want))
	}
	for i, name := range want {
		if configs[i].Name != name {
			t.Fatalf("service %d = %q, want %q", i, configs[i].Name, name)
		}
	}
	if v, ok := configs[2].Config["port"]; !ok || v != 5001 {
		t.Fatalf("web config port = %v, want 5001", v)
	}
}

func TestLoadServiceSequenceMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadServiceSequence(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadServiceSequence(absent) err = nil, want error")
	}
}

func TestAppManagerGetServiceByName(t *testing.T) {
	t.Parallel()

	am := NewAppManager()
	if svc := am.GetServiceByName("web"); svc != nil {
		t.Fatalf("GetServiceByName on empty manager = %v, want nil", svc)
	}
}
