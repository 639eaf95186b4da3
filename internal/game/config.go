package game

// Default sound model constants. They are gameplay-tuned and must not drift:
// saved behaviour (who hears what) depends on them bit for bit.
const (
	defaultMinVolume         = 10 // quieter noises are not propagated at all
	defaultHopLoss           = 10 // intensity lost per cell travelled
	defaultDoorLoss          = 60 // extra loss entering a closed door
	defaultContinueThreshold = 10 // newly reached cells at or below this stop spreading
)

// SoundConfig tunes the sound propagator.
type SoundConfig struct {
	MinVolume         int
	HopLoss           int
	DoorLoss          int
	ContinueThreshold int
}

// DefaultSoundConfig returns the tuned sound constants.
func DefaultSoundConfig() SoundConfig {
	return SoundConfig{
		MinVolume:         defaultMinVolume,
		HopLoss:           defaultHopLoss,
		DoorLoss:          defaultDoorLoss,
		ContinueThreshold: defaultContinueThreshold,
	}
}

// withDefaults replaces an all-zero config with the defaults and clamps the
// rest. HopLoss must stay positive for propagation to terminate.
func (c SoundConfig) withDefaults() SoundConfig {
	def := DefaultSoundConfig()
	if c == (SoundConfig{}) {
		return def
	}
	if c.HopLoss <= 0 {
		c.HopLoss = def.HopLoss
	}
	c.MinVolume = max(c.MinVolume, 0)
	c.DoorLoss = max(c.DoorLoss, 0)
	c.ContinueThreshold = max(c.ContinueThreshold, 0)
	return c
}

// Config holds the tunables of a World.
type Config struct {
	Sound SoundConfig
	// Verbose records per-turn detail (timers, plan sizes) in the SimLog.
	Verbose bool
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{Sound: DefaultSoundConfig()}
}
