package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"ProductDesk/internal/product"
)

var ErrBusy = errors.New("another catalog operation is in progress")

type State int

const (
	Idle State = iota
	Loading
	Loaded
	LoadFailed
	Mutating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadFailed:
		return "load_failed"
	case Mutating:
		return "mutating"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Catalog is the remote side of the controller.
type Catalog interface {
	FetchAll(ctx context.Context) ([]product.Product, error)
	Create(ctx context.Context, p *product.Product) error
	Update(ctx context.Context, p *product.Product) error
	Delete(ctx context.Context, p *product.Product) error
}

type mutation struct {
	op      string
	busy    string
	success string
	failure string
	call    func(ctx context.Context, p *product.Product) error
}

// Controller owns the product list shown to the user. Only one load or
// mutation runs at a time; a mutation holds the slot until its follow-up
// reload has finished.
type Controller struct {
	catalog Catalog
	view    Presenter
	loop    *Loop
	log     *zap.Logger

	mu       sync.Mutex
	state    State
	inFlight bool
	products []product.Product
}

func NewController(catalog Catalog, view Presenter, loop *Loop, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		catalog: catalog,
		view:    view,
		loop:    loop,
		log:     log,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Products returns a copy of the current collection.
func (c *Controller) Products() []product.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]product.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Controller) Find(id string) (product.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return product.Product{}, false
}

// Load replaces the collection with a fresh fetch.
func (c *Controller) Load(ctx context.Context) (*Task, error) {
	if _, err := c.acquire(Loading); err != nil {
		return nil, err
	}

	t := newTask()
	c.post(func() { c.view.ShowBusy("Loading...") })
	c.fetch(ctx, t, nil)
	return t, nil
}

func (c *Controller) Add(ctx context.Context, d Draft) (*Task, error) {
	p, err := d.apply(product.Product{Availability: product.InStock})
	if err != nil {
		return nil, err
	}
	return c.mutate(ctx, p, mutation{
		op:      "create",
		busy:    "Creating product...",
		success: "Product created",
		failure: "Could not create product",
		call:    c.catalog.Create,
	})
}

// Edit sends existing with the draft fields applied. existing itself is not
// modified.
func (c *Controller) Edit(ctx context.Context, existing product.Product, d Draft) (*Task, error) {
	if strings.TrimSpace(existing.ID) == "" {
		return nil, &product.ValidationError{Field: "id", Msg: "id required"}
	}
	p, err := d.apply(existing)
	if err != nil {
		return nil, err
	}
	return c.mutate(ctx, p, mutation{
		op:      "update",
		busy:    "Updating product...",
		success: "Product updated",
		failure: "Could not update product",
		call:    c.catalog.Update,
	})
}

func (c *Controller) Remove(ctx context.Context, existing product.Product) (*Task, error) {
	if strings.TrimSpace(existing.ID) == "" {
		return nil, &product.ValidationError{Field: "id", Msg: "id required"}
	}
	return c.mutate(ctx, existing, mutation{
		op:      "delete",
		busy:    "Deleting product...",
		success: "Product deleted",
		failure: "Could not delete product",
		call:    c.catalog.Delete,
	})
}

func (c *Controller) mutate(ctx context.Context, p product.Product, m mutation) (*Task, error) {
	prev, err := c.acquire(Mutating)
	if err != nil {
		return nil, err
	}

	t := newTask()
	c.post(func() { c.view.ShowBusy(m.busy) })

	go func() {
		err := m.call(ctx, &p)
		c.post(func() {
			if err != nil {
				c.log.Warn("catalog mutation failed", zap.String("op", m.op), zap.String("id", p.ID), zap.Error(err))
				c.release(prev)
				c.view.ShowError(m.failure)
				t.finish(err)
				return
			}

			c.view.ShowNotice(m.success)
			c.setState(Loading)
			c.fetch(ctx, nil, t)
		})
	}()

	return t, nil
}

// fetch runs FetchAll in the background and applies the result on the loop.
// load is finished with the fetch outcome; mutated, when set, is finished
// with nil because its mutation already succeeded.
func (c *Controller) fetch(ctx context.Context, load, mutated *Task) {
	go func() {
		products, err := c.catalog.FetchAll(ctx)
		c.post(func() {
			if err != nil {
				c.log.Warn("catalog load failed", zap.Error(err))
				c.release(LoadFailed)
				c.view.ShowError("Connection error")
			} else {
				c.replace(products)
				c.view.ShowProducts(c.Products())
				c.view.ShowNotice(fmt.Sprintf("%d products loaded", len(products)))
			}

			if load != nil {
				load.finish(err)
			}
			if mutated != nil {
				mutated.finish(nil)
			}
		})
	}()
}

func (c *Controller) acquire(next State) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return c.state, ErrBusy
	}
	prev := c.state
	c.inFlight = true
	c.state = next
	return prev, nil
}

func (c *Controller) release(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.inFlight = false
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *Controller) replace(products []product.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = products
	c.state = Loaded
	c.inFlight = false
}

// post hands fn to the loop. When the loop is already closed fn runs
// inline so tasks still complete.
func (c *Controller) post(fn func()) {
	if !c.loop.Post(fn) {
		fn()
	}
}
