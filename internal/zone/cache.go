package zone

import (
	"container/list"
	"sync"
	"time"
)

// 文档注释：本地 LRU 缓存（分类结果）
// 背景：热点坐标（诊所、医院门口）短周期内重复查询，进程内缓存降低判定开销；TTL 可调。
// 约束：键必须包含快照版本与精确坐标；不得使用 geohash 等近似键，否则边界附近会返回错误区域。
type LRU struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
}

type hit struct {
	Zone    Zone
	Matched bool
}

type kv struct {
	k   string
	v   hit
	exp time.Time
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element)}
}

func (c *LRU) Get(k string) (hit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		it := e.Value.(kv)
		if time.Now().Before(it.exp) {
			c.lst.MoveToFront(e)
			return it.v, true
		}
		c.lst.Remove(e)
		delete(c.dict, k)
	}
	return hit{}, false
}

func (c *LRU) Set(k string, v hit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp := time.Now().Add(c.ttl)
	if e, ok := c.dict[k]; ok {
		e.Value = kv{k: k, v: v, exp: exp}
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(kv{k: k, v: v, exp: exp})
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		it := back.Value.(kv)
		delete(c.dict, it.k)
		c.lst.Remove(back)
	}
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}
