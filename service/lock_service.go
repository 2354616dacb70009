package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	lockKeyPrefix  = "jailbot:lock:"
	defaultLockTTL = 2 * time.Minute
)

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// LockService 按 key 加互斥锁（不等待，抢不到直接返回 ErrBusy）
//
// 配置了 Redis 时用 SET NX PX + owner token，多副本之间也互斥；
// 否则退化为进程内的 key 集合。
type LockService struct {
	rdb *redis.Client
	ttl time.Duration

	mu   sync.Mutex
	held map[string]struct{}
}

func NewLockService(rdb *redis.Client) *LockService {
	return &LockService{
		rdb:  rdb,
		ttl:  defaultLockTTL,
		held: make(map[string]struct{}),
	}
}

// Acquire 抢锁；成功返回 release，失败返回 ErrBusy
func (l *LockService) Acquire(ctx context.Context, key string) (func(), error) {
	return l.AcquireTTL(ctx, key, l.ttl)
}

// AcquireTTL 同 Acquire，自定义过期时间（仅 Redis 模式有意义）
func (l *LockService) AcquireTTL(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	if l.rdb == nil {
		return l.acquireLocal(key)
	}

	fullKey := lockKeyPrefix + key
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// ctx 可能已取消，释放用独立的短超时
			rctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = releaseScript.Run(rctx, l.rdb, []string{fullKey}, token).Err()
		})
	}, nil
}

func (l *LockService) acquireLocal(key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, ErrBusy
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

// subjectLockKey 每个用户一把锁
func subjectLockKey(userID string) string {
	return "subject:" + userID
}

// SweepLockKey 多副本时只有一个实例执行到期扫描
const SweepLockKey = "sweep"
