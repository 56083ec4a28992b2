package obs

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig selects level, encoding and static fields for NewLogger.
type LogConfig struct {
	Level   string `env:"LEVEL" envDefault:"info"`
	Pretty  bool   `env:"PRETTY"`
	App     string `env:"APP" envDefault:"gosession"`
	Profile string `env:"PROFILE"`
}

// NewLogger builds a production (JSON) or development (console) zap logger.
// An unknown level falls back to info.
func NewLogger(c LogConfig) (*zap.Logger, error) {
	var cfg zap.Config
	if c.Pretty {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	level := new(zapcore.Level)
	if err := level.Set(strings.ToLower(strings.TrimSpace(c.Level))); err != nil {
		*level = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(*level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}

	fields := []zap.Field{zap.String("app", c.App)}
	if c.Profile != "" {
		fields = append(fields, zap.String("profile", c.Profile))
	}
	return cfg.Build(zap.Fields(fields...))
}

// TokenFingerprint returns a short, non-reversible label for a token so log lines can
// correlate tokens without leaking them.
func TokenFingerprint(tok string) string {
	if tok == "" {
		return ""
	}
	i := strings.LastIndex(tok, ".")
	sig := tok[i+1:]
	if len(sig) > 8 {
		sig = sig[:8]
	}
	return sig
}
