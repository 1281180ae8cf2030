package main

import (
	"os"
	"path/filepath"
	"testing"

	"blocksound/gameaudio"
)

var _ gameaudio.Options = (*settings)(nil)

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := loadSettings(path)
	if got := s.GetInt(gameaudio.MusicVolumeKey, 0, 100, 7); got != 7 {
		t.Fatalf("missing key: got %d, want default 7", got)
	}

	s.Set(gameaudio.MusicVolumeKey, 35)
	s.Set(gameaudio.UseSoundKey, true)
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}

	r := loadSettings(path)
	if got := r.GetInt(gameaudio.MusicVolumeKey, 0, 100, 0); got != 35 {
		t.Fatalf("music volume = %d, want 35", got)
	}
	if !r.GetBool(gameaudio.UseSoundKey, false) {
		t.Fatalf("usesound lost")
	}
	if got := r.GetInt(gameaudio.MusicVolumeKey, 0, 20, 0); got != 20 {
		t.Fatalf("clamp: got %d, want 20", got)
	}

	r.Delete(gameaudio.UseSoundKey)
	if loadSettings(path).GetBool(gameaudio.UseSoundKey, false) {
		t.Fatalf("usesound survived delete")
	}
}

func TestSettingsLegacyMigration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	legacy := `{"Version": 1, "Options": {"usemusic": "true", "usesound": false}}`
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	s := loadSettings(path)
	if v := gameaudio.ReadVolume(s, gameaudio.MusicVolumeKey, gameaudio.UseMusicKey); v != 100 {
		t.Fatalf("music volume = %d, want 100", v)
	}
	if v := gameaudio.ReadVolume(s, gameaudio.SoundsVolumeKey, gameaudio.UseSoundKey); v != 0 {
		t.Fatalf("sounds volume = %d, want 0", v)
	}

	r := loadSettings(path)
	if _, ok := r.Options[gameaudio.UseMusicKey]; ok {
		t.Fatalf("legacy usemusic key kept")
	}
	if _, ok := r.Options[gameaudio.UseSoundKey]; ok {
		t.Fatalf("legacy usesound key kept")
	}
	if got := r.GetInt(gameaudio.MusicVolumeKey, 0, 100, 0); got != 100 {
		t.Fatalf("migrated music volume = %d, want 100", got)
	}
}

func TestSettingsBadFile(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string]string{
		"garbage.json": "{not json",
		"old.json":     `{"Version": 0, "Options": {"musicvolume": 50}}`,
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		s := loadSettings(path)
		if len(s.Options) != 0 || s.Version != SETTINGS_VERSION {
			t.Fatalf("%s: got %+v, want defaults", name, s.Options)
		}
	}
}
