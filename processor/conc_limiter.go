package processor

import (
	"sync"
)

// concLimiter bounds how many products are rescaled at once while
// letting the stage wait for in-flight work to drain before closing its
// output channel.
type concLimiter struct {
	wg   sync.WaitGroup
	pool chan struct{}
}

func newConcLimiter(cLevel int) *concLimiter {
	return &concLimiter{pool: make(chan struct{}, cLevel)}
}

func (c *concLimiter) Acquire() {
	c.wg.Add(1)
	c.pool <- struct{}{}
}

func (c *concLimiter) Release() {
	<-c.pool
	c.wg.Done()
}

func (c *concLimiter) Wait() {
	c.wg.Wait()
}
