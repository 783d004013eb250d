package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ILogger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
	Sync() error
}

type Options struct {
	// FilePath receives JSON logs rotated by lumberjack. Empty disables the file.
	FilePath   string
	Production bool
	// Level is the minimum level for both outputs: debug, info, warn or error.
	Level string
}

type ZapLogger struct {
	logger *zap.Logger
}

var _ ILogger = (*ZapLogger)(nil)

func NewZapLogger(opts Options) *ZapLogger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Level != "" {
		if parsed, err := zapcore.ParseLevel(opts.Level); err == nil {
			level.SetLevel(parsed)
		}
	}

	cores := []zapcore.Core{consoleCore(opts.Production, level)}
	if opts.FilePath != "" {
		cores = append(cores, fileCore(opts.FilePath, level))
	}

	// skip 1 so the caller is the code using ILogger, not this wrapper
	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return &ZapLogger{logger: l}
}

// NewNopLogger discards everything.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}

func fileCore(path string, level zapcore.LevelEnabler) zapcore.Core {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	return zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(rotator), level)
}

func consoleCore(production bool, level zapcore.LevelEnabler) zapcore.Core {
	var enc zapcore.Encoder
	if production {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level)
}

func (l *ZapLogger) write(level zapcore.Level, module, message string, details map[string]interface{}) {
	ce := l.logger.Check(level, message)
	if ce == nil {
		return
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	fields := []zap.Field{zap.String("module", module), zap.Any("details", details)}
	if err, ok := details["error"]; ok && level >= zapcore.ErrorLevel {
		fields = append(fields, zap.Any("error_ref", err))
	}
	ce.Write(fields...)
}

func (l *ZapLogger) Debug(module, message string, details map[string]interface{}) {
	l.write(zapcore.DebugLevel, module, message, details)
}

func (l *ZapLogger) Info(module, message string, details map[string]interface{}) {
	l.write(zapcore.InfoLevel, module, message, details)
}

func (l *ZapLogger) Warn(module, message string, details map[string]interface{}) {
	l.write(zapcore.WarnLevel, module, message, details)
}

func (l *ZapLogger) Error(module, message string, details map[string]interface{}) {
	l.write(zapcore.ErrorLevel, module, message, details)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
