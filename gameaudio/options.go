package gameaudio

// Option keys for the persisted volumes and their legacy on/off switches.
const (
	MusicVolumeKey  = "musicvolume"
	UseMusicKey     = "usemusic"
	SoundsVolumeKey = "soundsvolume"
	UseSoundKey     = "usesound"
)

// Options is the persisted configuration store.
type Options interface {
	// GetInt returns the value of key clamped to [min, max], or def when
	// the key is missing or not a number.
	GetInt(key string, min, max, def int) int
	GetBool(key string, def bool) bool
	Set(key string, value any)
	Delete(key string)
}

// ReadVolume reads a 0-100 volume. Older settings only stored an on/off
// switch under boolKey; when no volume is set the switch is read as 100 or
// 0, removed, and the result written back under volKey.
func ReadVolume(opts Options, volKey, boolKey string) int {
	v := opts.GetInt(volKey, 0, 100, 0)
	if v != 0 {
		return v
	}
	if opts.GetBool(boolKey, false) {
		v = 100
	}
	opts.Delete(boolKey)
	if v != 0 {
		opts.Set(volKey, v)
	}
	return v
}

func clampVolume(v int) int {
	return min(max(v, 0), 100)
}
