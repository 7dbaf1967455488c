package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "LichessIngest/1.0"

// NewClient builds the resty client shared by the downloader and the
// catalog. A zero timeout means no deadline, which large archives need.
func NewClient(timeout time.Duration, logger *slog.Logger) *resty.Client {
	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetRetryCount(0).
		SetLogger(restyLogger{logger: logger})
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return client
}

type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) { l.log(slog.LevelError, format, v) }
func (l restyLogger) Warnf(format string, v ...interface{})  { l.log(slog.LevelWarn, format, v) }
func (l restyLogger) Debugf(format string, v ...interface{}) { l.log(slog.LevelDebug, format, v) }

func (l restyLogger) log(level slog.Level, format string, v []interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Log(context.Background(), level, strings.TrimSpace(fmt.Sprintf(format, v...)), "source", "resty")
}
