package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"zapp/internal/ctxutil"
)

var logger *slog.Logger

func init() {
	Setup(Options{Level: "debug", Format: "text"})
}

type Options struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

func Setup(opt Options) {
	var level slog.Level
	switch strings.ToLower(opt.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		if logger != nil {
			logger.Warn("invalid log level, defaulting to 'info'")
		}
	}

	var out io.Writer = os.Stdout
	if opt.File != "" {
		out = &lumberjack.Logger{
			Filename:   opt.File,
			MaxSize:    opt.MaxSizeMB,
			MaxBackups: opt.MaxBackups,
		}
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(opt.Format) {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
		if logger != nil {
			logger.Warn("invalid log format, defaulting to 'text'")
		}
	}

	logger = slog.New(handler)
}

func Info(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelInfo, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelWarn, msg, args...)
}

func Error(ctx context.Context, err error, msg string, args ...any) {
	if err != nil {
		args = append(args, "error", err)
	}

	level := slog.LevelError
	if errors.Is(err, context.Canceled) || errors.Is(err, syscall.EPIPE) {
		level = slog.LevelDebug
	}

	log(ctx, level, msg, args...)
}

func Debug(ctx context.Context, msg string, args ...any) {
	log(ctx, slog.LevelDebug, msg, args...)
}

func HttpRequest(ctx context.Context, r *http.Request, status int, duration time.Duration, bytesWritten int64, extraArgs ...any) {
	level := slog.LevelInfo
	if status >= 500 {
		level = slog.LevelError
	} else if status >= 400 {
		level = slog.LevelWarn
	}

	ctxArgs := ctxutil.LogFields(ctx)

	stdFields := []any{
		"remote", r.RemoteAddr,
		"method", r.Method,
		"status", status,
		"path", r.URL.Path,
		"written", humanizeBytes(bytesWritten),
		"duration", humanizeDuration(duration),
	}

	args := make([]any, 0, len(ctxArgs)+len(stdFields)+len(extraArgs))
	args = append(args, ctxArgs...)
	args = append(args, stdFields...)
	args = append(args, extraArgs...)

	logger.Log(ctx, level, "http", args...)
}

// SanitizeURL strips query strings and userinfo so provider credentials
// never reach the log output.
func SanitizeURL(urlString string) string {
	parsed, err := url.Parse(urlString)
	if err != nil || parsed.Host == "" {
		return "[unparseable]"
	}
	parsed.RawQuery = ""
	parsed.User = nil
	return parsed.String()
}

func log(ctx context.Context, level slog.Level, msg string, args ...any) {
	ctxArgs := ctxutil.LogFields(ctx)
	if len(ctxArgs) > 0 {
		combinedArgs := make([]any, 0, len(ctxArgs)+len(args))
		combinedArgs = append(combinedArgs, ctxArgs...)
		combinedArgs = append(combinedArgs, args...)
		args = combinedArgs
	}
	logger.Log(ctx, level, msg, args...)
}

func humanizeBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * 1024
	)

	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1fMB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1fKB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

func humanizeDuration(d time.Duration) string {
	if d < time.Microsecond {
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%.2fµs", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1000000)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}

	return fmt.Sprintf("%.1fm", d.Minutes())
}
