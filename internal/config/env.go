package config

// Environment variables read by ApplyEnv.
const (
	EnvFFmpeg   = "FRAMECOPY_FFMPEG"
	EnvFFprobe  = "FRAMECOPY_FFPROBE"
	EnvLogLevel = "FRAMECOPY_LOG_LEVEL"
)

// ApplyEnv overrides cfg from the environment for every setting whose flag
// was not given on the command line. Empty variables are ignored.
func ApplyEnv(cfg *Config, getenv func(string) string, changed func(flag string) bool) error {
	if v := getenv(EnvFFmpeg); v != "" && !changed("ffmpeg") {
		cfg.FFmpegPath = v
	}
	if v := getenv(EnvFFprobe); v != "" && !changed("ffprobe") {
		cfg.FFprobePath = v
	}
	if v := getenv(EnvLogLevel); v != "" && !changed("log-level") {
		return (&logLevelValue{&cfg.LogLevel}).Set(v)
	}
	return nil
}
