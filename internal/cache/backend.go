package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend - кэш с тегами. InvalidateTags удаляет все ключи, помеченные любым из тегов.
type Backend interface {
	InvalidateTags(ctx context.Context, tags []string) error
}

// RedisBackend хранит для каждого тега SET с ключами, закэшированными под этим тегом
type RedisBackend struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisBackend(rdb redis.UniversalClient, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = "cache"
	}
	return &RedisBackend{rdb: rdb, prefix: prefix}
}

func (b *RedisBackend) key(k string) string    { return b.prefix + ":key:" + k }
func (b *RedisBackend) tagKey(t string) string { return b.prefix + ":tag:" + t }
func (b *RedisBackend) genKey(t string) string { return b.prefix + ":gen:" + t }

// generationTTL - сколько живет счетчик поколений тега после последней инвалидации
const generationTTL = 24 * time.Hour

// errStale - между чтением поколений и записью тег был инвалидирован
var errStale = errors.New("cache: tags invalidated during load")

// Set сохраняет значение и регистрирует ключ во всех тегах одной транзакцией
func (b *RedisBackend) Set(ctx context.Context, key string, value interface{}, tags []string, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}

	full := b.key(key)
	_, err = b.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, full, data, ttl)
		for _, t := range tags {
			pipe.SAdd(ctx, b.tagKey(t), full)
		}
		return nil
	})
	return err
}

// Get возвращает (false, nil) при промахе
func (b *RedisBackend) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := b.rdb.Get(ctx, b.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache: unmarshal %s: %w", key, err)
	}
	return true, nil
}

// generations возвращает текущие поколения тегов; nil - тег еще не инвалидировался
func (b *RedisBackend) generations(ctx context.Context, tags []string) ([]interface{}, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	keys := make([]string, len(tags))
	for i, t := range tags {
		keys[i] = b.genKey(t)
	}
	return b.rdb.MGet(ctx, keys...).Result()
}

// setIfFresh пишет значение, только если поколения тегов не изменились с момента gens.
// Проверка и запись идут под WATCH, так что инвалидация между ними отменяет EXEC.
func (b *RedisBackend) setIfFresh(ctx context.Context, key string, value interface{}, tags []string, ttl time.Duration, gens []interface{}) error {
	if len(tags) == 0 {
		return b.Set(ctx, key, value, tags, ttl)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}

	genKeys := make([]string, len(tags))
	for i, t := range tags {
		genKeys[i] = b.genKey(t)
	}
	full := b.key(key)

	err = b.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.MGet(ctx, genKeys...).Result()
		if err != nil {
			return err
		}
		for i := range current {
			if current[i] != gens[i] {
				return errStale
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, full, data, ttl)
			for _, t := range tags {
				pipe.SAdd(ctx, b.tagKey(t), full)
			}
			return nil
		})
		return err
	}, genKeys...)
	if errors.Is(err, redis.TxFailedErr) {
		return errStale
	}
	return err
}

// InvalidateTags сначала поднимает поколение тега, затем удаляет его ключи:
// чтение, начатое до инвалидации, уже не сможет записать свой результат.
func (b *RedisBackend) InvalidateTags(ctx context.Context, tags []string) error {
	for _, t := range tags {
		gk := b.genKey(t)
		if _, err := b.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Incr(ctx, gk)
			pipe.Expire(ctx, gk, generationTTL)
			return nil
		}); err != nil {
			return fmt.Errorf("cache: bump generation of %s: %w", t, err)
		}

		tk := b.tagKey(t)
		keys, err := b.rdb.SMembers(ctx, tk).Result()
		if err != nil {
			return fmt.Errorf("cache: members of %s: %w", t, err)
		}
		keys = append(keys, tk)
		if err := b.rdb.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("cache: invalidate %s: %w", t, err)
		}
	}
	return nil
}

// NoopBackend - кэш выключен
type NoopBackend struct{}

func (NoopBackend) InvalidateTags(context.Context, []string) error { return nil }

// Remember - read-through: при попадании читает из кэша, иначе вызывает load и сохраняет результат.
// Результат не сохраняется, если любой из тегов был инвалидирован во время load.
// Ошибки кэша не мешают ответу, load при этом вызывается.
func Remember[T any](ctx context.Context, b *RedisBackend, key string, tags []string, ttl time.Duration, load func() (T, error)) (T, error) {
	if b == nil {
		return load()
	}

	var cached T
	if ok, err := b.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	gens, genErr := b.generations(ctx, tags)

	value, err := load()
	if err != nil {
		return value, err
	}
	if genErr == nil {
		_ = b.setIfFresh(ctx, key, value, tags, ttl, gens)
	}
	return value, nil
}
