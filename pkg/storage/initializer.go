package storage

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// OpenFunc establishes the underlying collection and returns a handle to it.
// It must create the collection when it does not exist yet and must not fail
// when it already does.
type OpenFunc func(ctx context.Context) (Interface, error)

// Initializer hands out the store handle. The first Init call opens the
// store; every concurrent or later caller receives the same handle until
// Invalidate is called.
type Initializer struct {
	open OpenFunc

	mu   sync.Mutex
	call *initCall
}

type initCall struct {
	done  chan struct{}
	store Interface
	err   error
}

// NewInitializer creates an Initializer which opens stores with open.
func NewInitializer(open OpenFunc) *Initializer {
	return &Initializer{open: open}
}

// Init returns the store handle, opening it if required. A failed
// initialization is not remembered, the next call tries again.
func (i *Initializer) Init(ctx context.Context) (Interface, error) {
	i.mu.Lock()
	c := i.call
	if c == nil {
		c = &initCall{done: make(chan struct{})}
		i.call = c
		go i.run(context.WithoutCancel(ctx), c)
	}
	i.mu.Unlock()

	select {
	case <-c.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return c.store, c.err
}

func (i *Initializer) run(ctx context.Context, c *initCall) {
	defer close(c.done)

	log.Debug("storage: initializing event store")
	s, err := i.open(ctx)
	if err != nil {
		log.Errorf("storage: failed to initialize event store: %s", err)
		c.err = NewUnavailableError(err)

		i.mu.Lock()
		if i.call == c {
			i.call = nil
		}
		i.mu.Unlock()
		return
	}

	c.store = s
	log.Debug("storage: event store initialized")
}

// Invalidate drops the current handle, e.g. after the host tore down the
// persistence context. The old handle is closed once its initialization has
// finished; the next Init opens a new one.
func (i *Initializer) Invalidate() {
	i.mu.Lock()
	c := i.call
	i.call = nil
	i.mu.Unlock()

	if c == nil {
		return
	}

	go func() {
		<-c.done
		if c.store != nil {
			if err := c.store.Close(); err != nil {
				log.Warnf("storage: failed to close invalidated store: %s", err)
			}
		}
	}()
}

// Close closes the current handle if there is one.
func (i *Initializer) Close() error {
	i.mu.Lock()
	c := i.call
	i.call = nil
	i.mu.Unlock()

	if c == nil {
		return nil
	}

	<-c.done
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
