package cache

import (
	"sync"

	adminusers "userdesk/frontend/adminUsers"
)

// UserCache caches directory records by id. Writers keep it current: updates replace the
// entry and deletes drop it.
type UserCache struct {
	mu    sync.RWMutex
	users map[int64]adminusers.User
}

func NewUserCache() *UserCache {
	return &UserCache{users: make(map[int64]adminusers.User)}
}

func (c *UserCache) Add(user adminusers.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[user.ID] = user
}

func (c *UserCache) Get(id int64) (adminusers.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[id]
	return u, ok
}

func (c *UserCache) Remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, id)
}

func (c *UserCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.users)
}
