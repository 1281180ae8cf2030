package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
)

const SETTINGS_VERSION = 1

// settings is the JSON settings file. Every value lives in Options under a
// lowercase key; the file is rewritten whenever a value changes.
type settings struct {
	Version int            `json:"Version"`
	Options map[string]any `json:"Options"`

	mu   sync.Mutex
	path string
}

func defaultSettings(path string) *settings {
	return &settings{Version: SETTINGS_VERSION, Options: map[string]any{}, path: path}
}

// loadSettings reads path. A missing, unreadable or outdated file yields
// defaults, which are only written once a value is set.
func loadSettings(path string) *settings {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logWarn("load settings: %v", err)
		}
		return defaultSettings(path)
	}

	tmp := defaultSettings(path)
	if err := json.Unmarshal(data, tmp); err != nil {
		logWarn("load settings: %v", err)
		return defaultSettings(path)
	}
	if tmp.Version != SETTINGS_VERSION {
		logWarn("settings version %d, want %d; using defaults", tmp.Version, SETTINGS_VERSION)
		return defaultSettings(path)
	}
	if tmp.Options == nil {
		tmp.Options = map[string]any{}
	}
	return tmp
}

func (s *settings) save() {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		logError("save settings: %v", err)
		return
	}
	if err := os.WriteFile(s.path+".tmp", data, 0644); err != nil {
		logError("save settings: %v", err)
		return
	}
	if err := os.Rename(s.path+".tmp", s.path); err != nil {
		logError("save settings: %v", err)
	}
}

func (s *settings) GetInt(key string, min, max, def int) int {
	s.mu.Lock()
	v, ok := s.Options[key]
	s.mu.Unlock()
	if !ok {
		return def
	}

	var n int
	switch x := v.(type) {
	case float64:
		n = int(x)
	case int:
		n = x
	case string:
		i, err := strconv.Atoi(x)
		if err != nil {
			return def
		}
		n = i
	default:
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func (s *settings) GetBool(key string, def bool) bool {
	s.mu.Lock()
	v, ok := s.Options[key]
	s.mu.Unlock()
	if !ok {
		return def
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func (s *settings) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Options[key] = value
	s.save()
}

func (s *settings) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Options[key]; !ok {
		return
	}
	delete(s.Options, key)
	s.save()
}

func (s *settings) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("%s (%d options)", s.path, len(s.Options))
}
