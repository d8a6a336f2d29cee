package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	// DebugLevel 调试级别
	DebugLevel = zerolog.DebugLevel
	// InfoLevel 信息级别
	InfoLevel = zerolog.InfoLevel
	// WarnLevel 警告级别
	WarnLevel = zerolog.WarnLevel
	// ErrorLevel 错误级别
	ErrorLevel = zerolog.ErrorLevel
	// Disabled 禁用日志
	Disabled = zerolog.Disabled
)

// 字段命名只初始化一次,多个Logger实例共享
var setup sync.Once

// Logger 日志记录器
type Logger struct {
	l zerolog.Logger
}

// NewLogger 创建新的日志记录器
func NewLogger(ops ...LoggerOption) *Logger {
	setup.Do(func() {
		zerolog.TimeFieldFormat = time.DateTime
		zerolog.TimestampFieldName = "time"
	})

	l := zerolog.New(newConsoleWriter()).With().Timestamp().Logger()
	for _, o := range ops {
		l = o(l)
	}
	return &Logger{l: l}
}

// newConsoleWriter 控制台输出,紧凑单行格式
func newConsoleWriter() zerolog.ConsoleWriter {
	w := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.DateTime,
	}
	w.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("%-5s", i))
	}
	w.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s=", i)
	}
	return w
}

// SetLevel 设置日志级别
func (my *Logger) SetLevel(level Level) {
	my.l = my.l.Level(level)
}

// Debug 返回Debug级别的日志事件
func (my *Logger) Debug() *zerolog.Event {
	return my.l.Debug()
}

// Info 返回Info级别的日志事件
func (my *Logger) Info() *zerolog.Event {
	return my.l.Info()
}

// Warn 返回Warn级别的日志事件
func (my *Logger) Warn() *zerolog.Event {
	return my.l.Warn()
}

// Error 返回Error级别的日志事件
func (my *Logger) Error() *zerolog.Event {
	return my.l.Error()
}

// 全局默认logger实例
var std = NewLogger(WithOutput(os.Stderr), WithLevel(InfoLevel))

// Default 返回默认logger实例
func Default() *Logger { return std }

// SetDefault 设置默认logger实例
func SetDefault(l *Logger) { std = l }

// SetLevel 设置默认logger的日志级别
func SetLevel(level Level) { std.SetLevel(level) }

// 全局方法
func Debug() *zerolog.Event { return std.Debug() }
func Info() *zerolog.Event  { return std.Info() }
func Warn() *zerolog.Event  { return std.Warn() }
func Error() *zerolog.Event { return std.Error() }
