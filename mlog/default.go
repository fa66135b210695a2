package mlog

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

type loggerImp struct {
	out    *lumberjack.Logger
	ll     *log.Logger
	buff   chan string
	level  Level
	stdOut bool
}

func newDefaultLogger(logpath, logName string, level Level, stdOut bool) *loggerImp {
	// 默认使用当前路径
	if len(logpath) == 0 {
		logpath = "."
	}
	if len(logName) == 0 {
		logName = "timerkit"
	}
	// 滚动切割交给lumberjack
	out := &lumberjack.Logger{
		Filename:   filepath.Join(logpath, logName+".log"),
		MaxSize:    100, // MB
		MaxBackups: 10,
		LocalTime:  true,
	}
	fileLogger := log.New(out, "", log.Ldate|log.Lmicroseconds)
	if stdOut {
		log.SetFlags(log.Ldate | log.Lmicroseconds)
	}
	mlog := &loggerImp{
		out:    out,
		ll:     fileLogger,
		buff:   make(chan string, 0x10000),
		level:  level,
		stdOut: stdOut,
	}
	return mlog
}

func (me *loggerImp) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("log recover error %v\n", r)
			}
			me.out.Close()
			wg.Done()
		}()

		for {
			select {
			case <-ctx.Done():
				// 退出前写完缓冲
				for {
					select {
					case str := <-me.buff:
						me.write(str)
					default:
						return
					}
				}
			case str := <-me.buff:
				me.write(str)
			}
		}
	}()
}

func (me *loggerImp) write(str string) {
	if me.stdOut {
		log.Println(str)
	}
	me.ll.Println(str)
}

func (me *loggerImp) IsLevelEnabled(level Level) bool {
	return me.level >= level
}

// push 日志缓冲满时丢弃, 不反压调用方
func (me *loggerImp) push(level Level, str string) {
	select {
	case me.buff <- getLevelTag(level) + str:
	default:
	}
}

func (me *loggerImp) Debug(args ...any) {
	if me.IsLevelEnabled(DebugLevel) {
		me.push(DebugLevel, fmt.Sprint(args...))
	}
}

func (me *loggerImp) Debugf(format string, args ...any) {
	if me.IsLevelEnabled(DebugLevel) {
		me.push(DebugLevel, fmt.Sprintf(format, args...))
	}
}

func (me *loggerImp) Info(args ...any) {
	if me.IsLevelEnabled(InfoLevel) {
		me.push(InfoLevel, fmt.Sprint(args...))
	}
}

func (me *loggerImp) Infof(format string, args ...any) {
	if me.IsLevelEnabled(InfoLevel) {
		me.push(InfoLevel, fmt.Sprintf(format, args...))
	}
}

func (me *loggerImp) Warn(args ...any) {
	if me.IsLevelEnabled(WarnLevel) {
		me.push(WarnLevel, fmt.Sprint(args...))
	}
}

func (me *loggerImp) Warnf(format string, args ...any) {
	if me.IsLevelEnabled(WarnLevel) {
		me.push(WarnLevel, fmt.Sprintf(format, args...))
	}
}

func (me *loggerImp) Error(args ...any) {
	if me.IsLevelEnabled(ErrorLevel) {
		me.push(ErrorLevel, fmt.Sprint(args...))
	}
}

func (me *loggerImp) Errorf(format string, args ...any) {
	if me.IsLevelEnabled(ErrorLevel) {
		me.push(ErrorLevel, fmt.Sprintf(format, args...))
	}
}

func (me *loggerImp) Fatal(args ...any) {
	me.push(FatalLevel, fmt.Sprint(args...))
}

func (me *loggerImp) Fatalf(format string, args ...any) {
	me.push(FatalLevel, fmt.Sprintf(format, args...))
}
