package initializers

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the operator-facing logger. It is a no-op until InitLogger runs.
var Log = zap.NewNop()

// InitLogger builds the global logger. level is one of debug, info, warn,
// error. Production mode writes JSON, otherwise a coloured console format.
// When file is set, output is also written there and rotated.
func InitLogger(level string, production bool, file string) error {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
		fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using info: %v\n", level, err)
	}

	var encCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	if production {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stdout)}
	if file != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), zap.NewAtomicLevelAt(zapLevel))
	Log = zap.New(core, zap.AddCaller())
	Log.Info("Logger initialized", zap.String("level", zapLevel.String()), zap.Bool("production", production))
	return nil
}

// SyncLogger flushes buffered entries; call before exit.
func SyncLogger() {
	_ = Log.Sync()
}
