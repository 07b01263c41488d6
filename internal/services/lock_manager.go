// internal/services/lock_manager.go
package services

import (
	"sync"
	"time"
)

// LockManager 按剧集slug粒度的锁管理器
// 语音合成是昂贵的外部调用，同一剧集的两次并发合成会对
// 缺失场景重复计费，所以合成遍历必须在剧集锁内串行执行
type LockManager struct {
	episodeLocks  map[string]*lockInfo
	globalLock    sync.RWMutex
	cleanupTicker *time.Ticker
}

type lockInfo struct {
	mutex    *sync.Mutex
	lastUsed time.Time
}

// NewLockManager 创建锁管理器
func NewLockManager() *LockManager {
	lm := &LockManager{
		episodeLocks: make(map[string]*lockInfo),
	}

	lm.startCleanup()
	return lm
}

// getEpisodeLock 获取剧集锁（线程安全）
func (lm *LockManager) getEpisodeLock(slug string) *sync.Mutex {
	lm.globalLock.RLock()
	if info, exists := lm.episodeLocks[slug]; exists {
		lm.globalLock.RUnlock()
		info.lastUsed = time.Now()
		return info.mutex
	}
	lm.globalLock.RUnlock()

	lm.globalLock.Lock()
	defer lm.globalLock.Unlock()

	// 双重检查（在写锁保护下是安全的）
	if info, exists := lm.episodeLocks[slug]; exists {
		info.lastUsed = time.Now()
		return info.mutex
	}

	info := &lockInfo{
		mutex:    &sync.Mutex{},
		lastUsed: time.Now(),
	}
	lm.episodeLocks[slug] = info
	return info.mutex
}

// ExecuteWithEpisodeLock 在剧集锁保护下执行操作
func (lm *LockManager) ExecuteWithEpisodeLock(slug string, fn func() error) error {
	lock := lm.getEpisodeLock(slug)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// 定期清理未使用的锁
func (lm *LockManager) startCleanup() {
	lm.cleanupTicker = time.NewTicker(5 * time.Minute)
	go func() {
		for range lm.cleanupTicker.C {
			lm.cleanupUnusedLocks()
		}
	}()
}

func (lm *LockManager) cleanupUnusedLocks() {
	lm.globalLock.Lock()
	defer lm.globalLock.Unlock()

	const maxLocks = 200
	const lockTimeout = 30 * time.Minute

	// 只有在锁数量过多时才清理
	if len(lm.episodeLocks) > maxLocks {
		now := time.Now()
		for slug, info := range lm.episodeLocks {
			if now.Sub(info.lastUsed) > lockTimeout {
				delete(lm.episodeLocks, slug)
			}
		}
	}
}
