package listing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ProductDesk/internal/catalogclient"
	"ProductDesk/internal/listing"
	"ProductDesk/internal/product"
)

// MockCatalog is a testify mock of listing.Catalog.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FetchAll(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockCatalog) Create(ctx context.Context, p *product.Product) error {
	return m.Called(ctx, *p).Error(0)
}

func (m *MockCatalog) Update(ctx context.Context, p *product.Product) error {
	return m.Called(ctx, *p).Error(0)
}

func (m *MockCatalog) Delete(ctx context.Context, p *product.Product) error {
	return m.Called(ctx, *p).Error(0)
}

type event struct {
	kind string
	msg  string
	n    int
}

type recordingView struct {
	mu     sync.Mutex
	events []event
}

func (v *recordingView) add(e event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, e)
}

func (v *recordingView) ShowBusy(msg string)   { v.add(event{kind: "busy", msg: msg}) }
func (v *recordingView) ShowNotice(msg string) { v.add(event{kind: "notice", msg: msg}) }
func (v *recordingView) ShowError(msg string)  { v.add(event{kind: "error", msg: msg}) }
func (v *recordingView) ShowProducts(ps []product.Product) {
	v.add(event{kind: "products", n: len(ps)})
}

func (v *recordingView) kinds() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, 0, len(v.events))
	for _, e := range v.events {
		out = append(out, e.kind)
	}
	return out
}

func (v *recordingView) last() event {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.events[len(v.events)-1]
}

var anything = mock.Anything

var shirt = product.Product{
	ID:           "5LyQpt",
	Title:        "Shirt",
	Price:        19.99,
	Category:     "men's clothing",
	Availability: product.InStock,
}

func setup(t *testing.T) (*listing.Controller, *MockCatalog, *recordingView) {
	t.Helper()

	loop := listing.NewLoop()
	t.Cleanup(loop.Close)

	cat := new(MockCatalog)
	view := &recordingView{}
	return listing.NewController(cat, view, loop, nil), cat, view
}

func wait(t *testing.T, task *listing.Task) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := task.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "task did not complete")
	return err
}

func TestLoad_ReplacesCollection(t *testing.T) {
	c, cat, view := setup(t)
	cat.On("FetchAll", anything).Return([]product.Product{shirt}, nil).Once()

	assert.Equal(t, listing.Idle, c.State())

	task, err := c.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, wait(t, task))

	got := c.Products()
	require.Len(t, got, 1)
	assert.Equal(t, "5LyQpt", got[0].ID)
	assert.Equal(t, "Shirt", got[0].Title)
	assert.Equal(t, 19.99, got[0].Price)
	assert.Equal(t, product.InStock, got[0].Availability)
	assert.Zero(t, got[0].Rating)
	assert.Zero(t, got[0].RatingCount)
	assert.Equal(t, listing.Loaded, c.State())
	assert.Equal(t, []string{"busy", "products", "notice"}, view.kinds())
	assert.Equal(t, "1 products loaded", view.last().msg)

	p, ok := c.Find("5LyQpt")
	assert.True(t, ok)
	assert.Equal(t, shirt, p)

	cat.AssertExpectations(t)
}

func TestLoad_FullReplaceNotMerge(t *testing.T) {
	c, cat, _ := setup(t)
	other := product.Product{ID: "p2", Title: "Ring", Category: "jewelery"}
	cat.On("FetchAll", anything).Return([]product.Product{shirt}, nil).Once()
	cat.On("FetchAll", anything).Return([]product.Product{other}, nil).Once()

	for i := 0; i < 2; i++ {
		task, err := c.Load(context.Background())
		require.NoError(t, err)
		require.NoError(t, wait(t, task))
	}

	assert.Equal(t, []product.Product{other}, c.Products())
}

func TestLoad_FailureKeepsPriorCollection(t *testing.T) {
	c, cat, view := setup(t)
	cat.On("FetchAll", anything).Return([]product.Product{shirt}, nil).Once()
	cat.On("FetchAll", anything).Return(nil, &catalogclient.Error{Op: "fetch", Reason: catalogclient.ReasonStatus, Status: 503}).Once()

	task, _ := c.Load(context.Background())
	require.NoError(t, wait(t, task))

	task, err := c.Load(context.Background())
	require.NoError(t, err)
	err = wait(t, task)
	assert.ErrorIs(t, err, catalogclient.ErrBadStatus)

	assert.Equal(t, []product.Product{shirt}, c.Products())
	assert.Equal(t, listing.LoadFailed, c.State())
	assert.Equal(t, event{kind: "error", msg: "Connection error"}, view.last())
}

func TestAdd_CreatesThenReloads(t *testing.T) {
	c, cat, view := setup(t)

	want := product.Product{Title: "Mouse", Description: "wireless", Price: 25, Category: "electronics", Availability: product.InStock}
	cat.On("Create", anything, want).Return(nil).Once()
	cat.On("FetchAll", anything).Return([]product.Product{shirt}, nil).Once()

	task, err := c.Add(context.Background(), listing.Draft{
		Title:       "  Mouse ",
		Description: "wireless",
		Price:       "25",
		Category:    "electronics",
	})
	require.NoError(t, err)
	require.NoError(t, wait(t, task))

	assert.Equal(t, listing.Loaded, c.State())
	assert.Equal(t, []string{"busy", "notice", "products", "notice"}, view.kinds())
	cat.AssertExpectations(t)
}

func TestAdd_ServerErrorDoesNotReload(t *testing.T) {
	c, cat, view := setup(t)
	cat.On("FetchAll", anything).Return([]product.Product{shirt}, nil).Once()

	task, _ := c.Load(context.Background())
	require.NoError(t, wait(t, task))

	cat.On("Create", anything, mock.AnythingOfType("product.Product")).
		Return(&catalogclient.Error{Op: "create", Reason: catalogclient.ReasonStatus, Status: 500}).Once()

	task, err := c.Add(context.Background(), listing.Draft{Title: "Mouse", Price: "25", Category: "electronics"})
	require.NoError(t, err)
	assert.Error(t, wait(t, task))

	assert.Equal(t, listing.Loaded, c.State())
	assert.Equal(t, []product.Product{shirt}, c.Products())
	assert.Equal(t, event{kind: "error", msg: "Could not create product"}, view.last())
	cat.AssertNumberOfCalls(t, "FetchAll", 1)
	cat.AssertExpectations(t)
}

func TestRemove_NoContentReloadsOnce(t *testing.T) {
	c, cat, _ := setup(t)
	cat.On("Delete", anything, shirt).Return(nil).Once()
	cat.On("FetchAll", anything).Return([]product.Product{}, nil).Once()

	task, err := c.Remove(context.Background(), shirt)
	require.NoError(t, err)
	require.NoError(t, wait(t, task))

	assert.Empty(t, c.Products())
	cat.AssertNumberOfCalls(t, "FetchAll", 1)
	cat.AssertExpectations(t)
}

func TestEdit_AppliesDraftToCopy(t *testing.T) {
	c, cat, _ := setup(t)

	existing := shirt
	existing.Rating = 4.2
	existing.RatingCount = 10

	want := existing
	want.Title = "Oxford shirt"
	want.Price = 24.5
	cat.On("Update", anything, want).Return(nil).Once()
	cat.On("FetchAll", anything).Return([]product.Product{want}, nil).Once()

	task, err := c.Edit(context.Background(), existing, listing.Draft{
		Title:    "Oxford shirt",
		Price:    "24.5",
		Category: "men's clothing",
	})
	require.NoError(t, err)
	require.NoError(t, wait(t, task))

	assert.Equal(t, "Shirt", existing.Title)
	assert.Equal(t, []product.Product{want}, c.Products())
	cat.AssertExpectations(t)
}

func TestMutation_ReloadFailureStillCompletesMutation(t *testing.T) {
	c, cat, view := setup(t)
	cat.On("Delete", anything, shirt).Return(nil).Once()
	cat.On("FetchAll", anything).Return(nil, errors.New("reset")).Once()

	task, err := c.Remove(context.Background(), shirt)
	require.NoError(t, err)
	assert.NoError(t, wait(t, task))

	assert.Equal(t, listing.LoadFailed, c.State())
	assert.Equal(t, []string{"busy", "notice", "error"}, view.kinds())
}

func TestValidation_NeverContactsCatalog(t *testing.T) {
	c, cat, _ := setup(t)

	cases := []struct {
		name  string
		draft listing.Draft
		field string
	}{
		{"missing title", listing.Draft{Price: "1", Category: "electronics"}, "title"},
		{"missing price", listing.Draft{Title: "x", Category: "electronics"}, "price"},
		{"missing category", listing.Draft{Title: "x", Price: "1"}, "category"},
		{"unknown category", listing.Draft{Title: "x", Price: "1", Category: "toys"}, "category"},
		{"bad price", listing.Draft{Title: "x", Price: "ten", Category: "electronics"}, "price"},
		{"infinite price", listing.Draft{Title: "x", Price: "Inf", Category: "electronics"}, "price"},
		{"negative price", listing.Draft{Title: "x", Price: "-1", Category: "electronics"}, "price"},
		{"bad image", listing.Draft{Title: "x", Price: "1", Category: "electronics", Image: "not a url"}, "image"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task, err := c.Add(context.Background(), tc.draft)
			assert.Nil(t, task)
			require.ErrorIs(t, err, product.ErrInvalidArgument)

			var ve *product.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}

	_, err := c.Remove(context.Background(), product.Product{Title: "no id"})
	assert.ErrorIs(t, err, product.ErrInvalidArgument)

	_, err = c.Edit(context.Background(), product.Product{}, listing.Draft{Title: "x", Price: "1", Category: "y"})
	assert.ErrorIs(t, err, product.ErrInvalidArgument)

	assert.Equal(t, listing.Idle, c.State())
	cat.AssertNotCalled(t, "Create", anything, anything)
	cat.AssertNotCalled(t, "Update", anything, anything)
	cat.AssertNotCalled(t, "Delete", anything, anything)
}

func TestSingleFlight_RejectsConcurrentOperations(t *testing.T) {
	c, cat, _ := setup(t)

	release := make(chan struct{})
	cat.On("FetchAll", anything).Run(func(mock.Arguments) { <-release }).Return([]product.Product{shirt}, nil).Once()

	task, err := c.Load(context.Background())
	require.NoError(t, err)

	_, err = c.Load(context.Background())
	assert.ErrorIs(t, err, listing.ErrBusy)
	_, err = c.Remove(context.Background(), shirt)
	assert.ErrorIs(t, err, listing.ErrBusy)
	assert.Equal(t, listing.Loading, c.State())

	close(release)
	require.NoError(t, wait(t, task))

	cat.On("FetchAll", anything).Return([]product.Product{shirt}, nil).Once()
	task, err = c.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, wait(t, task))
	cat.AssertExpectations(t)
}

func TestSingleFlight_HeldThroughFollowUpReload(t *testing.T) {
	c, cat, _ := setup(t)

	release := make(chan struct{})
	cat.On("Delete", anything, shirt).Return(nil).Once()
	cat.On("FetchAll", anything).Run(func(mock.Arguments) { <-release }).Return([]product.Product{}, nil).Once()

	task, err := c.Remove(context.Background(), shirt)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return c.State() == listing.Loading }, time.Second, 5*time.Millisecond)
	_, err = c.Add(context.Background(), listing.Draft{Title: "x", Price: "1", Category: "electronics"})
	assert.ErrorIs(t, err, listing.ErrBusy)

	close(release)
	require.NoError(t, wait(t, task))
	assert.Equal(t, listing.Loaded, c.State())
}

func TestClose_QueuedContinuationStillCompletesTask(t *testing.T) {
	for i := 0; i < 50; i++ {
		loop := listing.NewLoop()
		cat := new(MockCatalog)
		cat.On("FetchAll", anything).Return([]product.Product{shirt}, nil)
		c := listing.NewController(cat, &recordingView{}, loop, nil)

		release := make(chan struct{})
		require.True(t, loop.Post(func() { <-release }))

		task, err := c.Load(context.Background())
		require.NoError(t, err)

		closed := make(chan struct{})
		go func() {
			loop.Close()
			close(closed)
		}()
		close(release)

		require.NoError(t, wait(t, task), "run %d", i)
		<-closed

		assert.Equal(t, listing.Loaded, c.State(), "run %d", i)
		next, err := c.Load(context.Background())
		require.NoError(t, err, "run %d: controller stayed busy", i)
		require.NoError(t, wait(t, next))
	}
}
