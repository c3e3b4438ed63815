package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const ConfigPathEnvVar = "SELECTION_WATCHER"

// Config carries every tunable of the watcher. The gesture/selection
// thresholds are deliberately configuration rather than constants: the
// right values are a product question, not something the engine decides.
type Config struct {
	// Debounce is the delay between a candidate selection and its emission.
	Debounce time.Duration
	// PendingCancelPx cancels a pending candidate when the pointer moves
	// further than this from the gesture anchor before the debounce fires.
	PendingCancelPx float64
	// ActiveCancelPx cancels an emitted selection when the pointer moves
	// further than this from its anchor. Wider than PendingCancelPx.
	ActiveCancelPx float64
	// MinLifetime guards a fresh selection against residual pointer motion.
	MinLifetime time.Duration
	// PassDelays are the offsets after mouse-up at which introspection is
	// retried; accessibility trees can lag the physical gesture.
	PassDelays []time.Duration
	// GestureSettle is the pause between physical mouse-up and gesture
	// classification reaching the coordinator.
	GestureSettle time.Duration
	// MoveCheckEvery rate-limits pointer displacement checks.
	MoveCheckEvery time.Duration
	// FocusCheckEvery is the polling interval for frontmost-app changes
	// while a selection is active; keyboard app switches produce no pointer
	// events, so displacement checks alone cannot catch them.
	FocusCheckEvery time.Duration

	// Clipboard-copy fallback probe.
	ClipboardPollAttempts int
	ClipboardPollTimeout  time.Duration
	ClipboardPollBackoff  time.Duration

	// TapResumeGrace is how long the input tap stays suppressed after the
	// last synthetic keystroke of a probe or paste-back.
	TapResumeGrace time.Duration
	// PasteSettle is the wait between focusing the target window and
	// synthesizing the paste keystroke.
	PasteSettle time.Duration
	// TapRetry is the interval for re-attempting tap installation when the
	// OS refuses it (usually a permissions problem).
	TapRetry time.Duration

	EnableFileLogging bool
}

func Load() (*Config, error) {
	// Configuration sources in priority order:
	// 1) .env in the executable directory
	// 2) a file named by the SELECTION_WATCHER env var
	// 3) plain environment variables
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		Debounce:              envDurationMs("DEBOUNCE_MS", 300),
		PendingCancelPx:       envFloat("PENDING_CANCEL_PX", 50),
		ActiveCancelPx:        envFloat("ACTIVE_CANCEL_PX", 150),
		MinLifetime:           envDurationMs("MIN_LIFETIME_MS", 500),
		PassDelays:            envDelayList("PASS_DELAYS_MS", []time.Duration{0, 50 * time.Millisecond, 150 * time.Millisecond}),
		GestureSettle:         envDurationMs("GESTURE_SETTLE_MS", 30),
		MoveCheckEvery:        envDurationMs("MOVE_CHECK_MS", 30),
		FocusCheckEvery:       envDurationMs("FOCUS_CHECK_MS", 500),
		ClipboardPollAttempts: envInt("CLIPBOARD_POLL_ATTEMPTS", 3),
		ClipboardPollTimeout:  envDurationMs("CLIPBOARD_POLL_TIMEOUT_MS", 300),
		ClipboardPollBackoff:  envDurationMs("CLIPBOARD_POLL_BACKOFF_MS", 50),
		TapResumeGrace:        envDurationMs("TAP_RESUME_GRACE_MS", 100),
		PasteSettle:           envDurationMs("PASTE_SETTLE_MS", 150),
		TapRetry:              envDurationMs("TAP_RETRY_MS", 3000),
		EnableFileLogging:     strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func envDurationMs(key string, defMs int) time.Duration {
	return time.Duration(envInt(key, defMs)) * time.Millisecond
}

// envDelayList parses a comma-separated list of millisecond offsets,
// e.g. "0,50,150". Unlike the other knobs a zero entry is legal here.
func envDelayList(key string, def []time.Duration) []time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []time.Duration
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return def
		}
		out = append(out, time.Duration(n)*time.Millisecond)
	}
	if len(out) == 0 {
		return def
	}
	return out
}
