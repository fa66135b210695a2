package mtime

import (
	"time"
)

const (
	SecMs  = 1000
	MinMs  = 60 * SecMs
	HourMs = 60 * MinMs
	DayMs  = 24 * HourMs
)

var (
	baseTime   = time.Now()           // 进程启动时间, 携带单调时钟读数
	baseMs     = baseTime.UnixMilli() // 启动时刻的ms时间戳
	timeOffset = time.Duration(0)     // 时间偏移
)

// SetTimeOffset 设置时间偏移量, 用于测试调时
func SetTimeOffset(newOffset time.Duration) {
	timeOffset = newOffset
}

// GetTimeOffset 获取时间偏移量
func GetTimeOffset() time.Duration {
	return timeOffset
}

// Now 获取当前时间, 基于启动时间和单调时钟推算, 不受系统改墙钟影响
func Now() time.Time {
	return baseTime.Add(time.Since(baseTime) + timeOffset)
}

// NowMs 获取当前时间的毫秒时间戳, 单调不减
func NowMs() int64 {
	return baseMs + (time.Since(baseTime) + timeOffset).Milliseconds()
}

// Time2Ms 系统时间转化为 ms时间戳
func Time2Ms(t time.Time) int64 {
	return t.UnixMilli()
}

// Ms2Time ms时间戳转化为时间
func Ms2Time(ms int64) time.Time {
	return time.UnixMilli(ms)
}
