package log

import (
	"log"
	"os"
)

// Level：日志级别
type Level int

// 日志级别常量
const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var (
	level  = LevelInfo
	logger = log.New(os.Stderr, "[fastpoll] ", log.LstdFlags)
)

// SetLevel：设置日志级别，低于该级别的日志会被丢弃
func SetLevel(l Level) {
	level = l
}

// SetLogger：替换默认的 logger
func SetLogger(l *log.Logger) {
	logger = l
}

// Debug：打印调试日志
func Debug(v ...interface{}) {
	if level <= LevelDebug {
		logger.Print(append([]interface{}{"[DEBUG] "}, v...)...)
	}
}

// Info：打印普通日志
func Info(v ...interface{}) {
	if level <= LevelInfo {
		logger.Print(append([]interface{}{"[INFO] "}, v...)...)
	}
}

// Error：打印错误日志
func Error(v ...interface{}) {
	if level <= LevelError {
		logger.Print(append([]interface{}{"[ERROR] "}, v...)...)
	}
}
