// Package logger 基于 zap 构建应用日志器。
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 按环境与配置构建 zap.Logger。
// dev 环境默认使用 console 编码与彩色级别，prod 使用 JSON。
// 所有日志都会携带服务名与版本字段，便于聚合检索。
func New(env, level, encoding, name, version string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if encoding == "json" || encoding == "console" {
		cfg.Encoding = encoding
	}
	if cfg.Encoding == "json" {
		// JSON 输出时彩色编码不可用
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	}

	lg, err := cfg.Build(zap.Fields(
		zap.String("service", name),
		zap.String("version", version),
	))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return lg, nil
}
