package store

import (
	"encoding/json"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database and points the package
// global at it, mirroring the real Init path without touching disk.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(&Setting{}, &SessionProfile{}, &PortForward{}, &SessionDescriptor{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	DB = db
	return db
}

func TestSettingRoundTrip(t *testing.T) {
	setupTestDB(t)

	if err := SetSetting("theme", "dark"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	got, err := GetSetting("theme")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got != "dark" {
		t.Errorf("GetSetting = %q, want %q", got, "dark")
	}

	if err := SetSetting("theme", "light"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}
	got, _ = GetSetting("theme")
	if got != "light" {
		t.Errorf("GetSetting after overwrite = %q, want %q", got, "light")
	}

	if err := DeleteSetting("theme"); err != nil {
		t.Fatalf("DeleteSetting: %v", err)
	}
	if _, err := GetSetting("theme"); err == nil {
		t.Error("expected error for deleted setting, got nil")
	}
}

func TestSessionProfileSSHFieldsNotInJSON(t *testing.T) {
	p := SessionProfile{
		Name:          "prod-box",
		Kind:          "ssh",
		Host:          "prod.example.com",
		PasswordEnc:   "cipher-text",
		PassphraseEnc: "cipher-text-2",
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal profile: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["PasswordEnc"]; ok {
		t.Error("PasswordEnc should not appear in JSON output")
	}
	if _, ok := m["PassphraseEnc"]; ok {
		t.Error("PassphraseEnc should not appear in JSON output")
	}
	if _, ok := m["host"]; !ok {
		t.Error("host should appear in JSON output")
	}
}

func TestProfileCRUDWithForwards(t *testing.T) {
	setupTestDB(t)

	p := &SessionProfile{Name: "staging", Kind: "ssh", Host: "staging.example.com", Port: 22, User: "deploy"}
	if err := SaveProfile(p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected profile ID to be assigned")
	}

	fwd := PortForward{ProfileID: p.ID, Type: "local", BindPort: 8080, TargetHost: "127.0.0.1", TargetPort: 80}
	if err := DB.Create(&fwd).Error; err != nil {
		t.Fatalf("create forward: %v", err)
	}

	loaded, err := GetProfile(p.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(loaded.Forwards) != 1 {
		t.Fatalf("expected 1 preloaded forward, got %d", len(loaded.Forwards))
	}
	if loaded.Forwards[0].BindPort != 8080 {
		t.Errorf("forward bind port = %d, want 8080", loaded.Forwards[0].BindPort)
	}

	if err := DeleteProfile(p.ID); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	if _, err := GetProfile(p.ID); err == nil {
		t.Error("expected error loading deleted profile, got nil")
	}
	var remaining int64
	DB.Model(&PortForward{}).Where("profile_id = ?", p.ID).Count(&remaining)
	if remaining != 0 {
		t.Errorf("expected forwards to cascade-delete, %d remain", remaining)
	}
}

func TestSessionDescriptorLifecycle(t *testing.T) {
	setupTestDB(t)

	d := &SessionDescriptor{ID: "sess-1", Title: "bash", Kind: "local"}
	if err := SaveSessionDescriptor(d); err != nil {
		t.Fatalf("SaveSessionDescriptor: %v", err)
	}

	descs, err := ListSessionDescriptors()
	if err != nil {
		t.Fatalf("ListSessionDescriptors: %v", err)
	}
	if len(descs) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(descs))
	}

	if err := ClearSessionDescriptors(); err != nil {
		t.Fatalf("ClearSessionDescriptors: %v", err)
	}
	descs, _ = ListSessionDescriptors()
	if len(descs) != 0 {
		t.Errorf("expected 0 descriptors after clear, got %d", len(descs))
	}
}
