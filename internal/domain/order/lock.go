package order

import "sync"

// customerLocks serializes order commits per customer. Two concurrent
// PlaceOrder calls for the same customer would otherwise both read the same
// cart snapshot and each produce an order; the lock spans snapshot read
// through transaction commit. Different customers never contend.
//
// Entries are reference counted and removed once the last holder releases,
// so the map does not grow with the customer population.
type customerLocks struct {
	mu    sync.Mutex
	locks map[int64]*customerLock
}

type customerLock struct {
	mu   sync.Mutex
	refs int
}

func newCustomerLocks() *customerLocks {
	return &customerLocks{locks: make(map[int64]*customerLock)}
}

// lock acquires the mutex for the given customer, creating it on first use.
func (c *customerLocks) lock(customerID int64) {
	c.mu.Lock()
	l, ok := c.locks[customerID]
	if !ok {
		l = &customerLock{}
		c.locks[customerID] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
}

// unlock releases the customer's mutex and drops the entry when unused.
func (c *customerLocks) unlock(customerID int64) {
	c.mu.Lock()
	l := c.locks[customerID]
	l.refs--
	if l.refs == 0 {
		delete(c.locks, customerID)
	}
	c.mu.Unlock()

	l.mu.Unlock()
}
