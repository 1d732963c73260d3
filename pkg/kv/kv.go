// Package kv is the persistence substrate for client state: a small
// byte-oriented key-value interface with memory, file, SQLite and Redis
// engines.
//
// Package kv 是客户端状态的持久化底层：一个面向字节的键值接口，
// 提供内存、文件、SQLite 和 Redis 引擎。
package kv

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Storage stores opaque values by key. Get reports a missing key with
// found == false and a nil error. Implementations are safe for concurrent use.
//
// Storage 按键存储不透明的值。键不存在时 Get 返回 found == false 和 nil 错误。
type Storage interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Engine names accepted by Open.
const (
	EngineMemory = "memory"
	EngineFile   = "file"
	EngineSQLite = "sqlite"
	EngineRedis  = "redis"
)

// ErrUnknownEngine is returned by Open for an unsupported engine name.
var ErrUnknownEngine = errors.New("unknown storage engine")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage is closed")

// Config selects and configures a storage engine.
//
// Config 选择并配置存储引擎。
type Config struct {
	Engine string

	// file engine
	Dir string

	// sqlite engine
	SQLitePath string

	// redis engine
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	RedisTTL      time.Duration // 0 means keys never expire
}

// Open creates the engine named by cfg.Engine. An empty name selects memory.
//
// Open 根据 cfg.Engine 创建存储引擎。名称为空时使用内存引擎。
func Open(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Engine {
	case EngineMemory, "":
		return NewMemory(), nil
	case EngineFile:
		return NewFile(cfg.Dir)
	case EngineSQLite:
		return NewSQLite(ctx, cfg.SQLitePath)
	case EngineRedis:
		return NewRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			TTL:      cfg.RedisTTL,
		})
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
}
