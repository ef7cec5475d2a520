// Package listing holds a fetched collection and derives filtered, sorted
// and paginated views of it in memory.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/frahmantamala/tandengan-portal/internal/notify"
)

const CategoryAll = "all"

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

// SortKey orders items by one attribute.
type SortKey[T any] struct {
	Name string
	Less func(a, b T) bool
}

type Options[T any] struct {
	// Name labels log lines and failure notices ("announcements").
	Name  string
	Fetch func(ctx context.Context) ([]T, error)
	ID    func(T) string

	// Search returns the strings the free-text term is matched against.
	Search func(T) []string
	// Category returns the categories an item belongs to; nil disables the filter.
	Category func(T) []string

	SortKeys    []SortKey[T]
	DefaultSort string
	DefaultDir  Direction
	PageSize    int

	Notifier notify.Notifier
	Logger   *slog.Logger
}

// View is one rendered page of the list.
type View[T any] struct {
	Items     []T       `json:"items"`
	Page      int       `json:"page"`
	PageSize  int       `json:"pageSize"`
	PageCount int       `json:"pageCount"`
	Total     int       `json:"total"`
	Search    string    `json:"search"`
	Category  string    `json:"category"`
	Sort      string    `json:"sort,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	Loaded    bool      `json:"loaded"`
}

type Controller[T any] struct {
	mu         sync.Mutex
	opts       Options[T]
	items      []T
	loaded     bool
	generation uint64
	patches    uint64

	search   string
	category string
	sortKey  string
	sortDir  Direction
	page     int
}

func New[T any](opts Options[T]) *Controller[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.DefaultDir == "" {
		opts.DefaultDir = Asc
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller[T]{
		opts:     opts,
		sortKey:  opts.DefaultSort,
		sortDir:  opts.DefaultDir,
		page:     1,
		category: CategoryAll,
	}
}

// Load fetches the whole collection. A response that arrives after a newer
// load or local patch has started is discarded, except that a list with
// nothing loaded yet adopts it until the newer load lands. On failure the
// current items are kept and an error notice is raised; nothing is retried.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	patches := c.patches
	c.mu.Unlock()

	items, err := c.opts.Fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		if err == nil && !c.loaded && patches == c.patches {
			c.opts.Logger.Debug("adopting superseded list response", "list", c.opts.Name, "generation", gen, "current", c.generation)
			c.items = append([]T(nil), items...)
			c.loaded = true
			c.clampPageLocked()
			return nil
		}
		c.opts.Logger.Debug("discarding stale list response", "list", c.opts.Name, "generation", gen, "current", c.generation)
		return nil
	}
	if err != nil {
		c.opts.Logger.Error("failed to load list", "list", c.opts.Name, "error", err)
		if c.opts.Notifier != nil {
			c.opts.Notifier.Notify(ctx, notify.FromError(err, fmt.Sprintf("Failed to load %s.", c.opts.Name))...)
		}
		return notify.Reported(fmt.Errorf("load %s: %w", c.opts.Name, err))
	}
	c.items = append([]T(nil), items...)
	c.loaded = true
	c.clampPageLocked()
	return nil
}

// EnsureLoaded performs the first load once.
func (c *Controller[T]) EnsureLoaded(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()
	if loaded {
		return nil
	}
	return c.Load(ctx)
}

// MarkStale makes the next EnsureLoaded refetch. Items already held stay
// visible until then.
func (c *Controller[T]) MarkStale() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}

func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// SetSearch changes the free-text filter; a different term resets the page to 1.
func (c *Controller[T]) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if term == c.search {
		return
	}
	c.search = term
	c.page = 1
}

// SetCategory changes the category filter; "" and "all" clear it. A
// different category resets the page to 1.
func (c *Controller[T]) SetCategory(category string) {
	if category == "" {
		category = CategoryAll
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if category == c.category {
		return
	}
	c.category = category
	c.page = 1
}

// ToggleSort flips the direction when key is already active, otherwise
// switches to key ascending.
func (c *Controller[T]) ToggleSort(key string) error {
	if _, ok := c.lookupSortKey(key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSortKey, key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sortKey == key {
		if c.sortDir == Asc {
			c.sortDir = Desc
		} else {
			c.sortDir = Asc
		}
		return nil
	}
	c.sortKey = key
	c.sortDir = Asc
	return nil
}

func (c *Controller[T]) SetSort(key string, dir Direction) error {
	if _, ok := c.lookupSortKey(key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSortKey, key)
	}
	if dir != Desc {
		dir = Asc
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortKey = key
	c.sortDir = dir
	return nil
}

// SetPage moves to page p, clamped to the available pages.
func (c *Controller[T]) SetPage(p int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = p
	c.clampPageLocked()
}

func (c *Controller[T]) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Controller[T]) PageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pageCount(len(c.visibleLocked()), c.opts.PageSize)
}

// View renders the current page.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := c.visibleLocked()
	pages := pageCount(len(visible), c.opts.PageSize)
	c.page = clampPage(c.page, pages)
	start := (c.page - 1) * c.opts.PageSize
	end := start + c.opts.PageSize
	if start > len(visible) {
		start = len(visible)
	}
	if end > len(visible) {
		end = len(visible)
	}

	return View[T]{
		Items:     append([]T{}, visible[start:end]...),
		Page:      c.page,
		PageSize:  c.opts.PageSize,
		PageCount: pages,
		Total:     len(visible),
		Search:    c.search,
		Category:  c.category,
		Sort:      c.sortKey,
		Direction: c.sortDir,
		Loaded:    c.loaded,
	}
}

// Visible returns the filtered and sorted collection without paging.
func (c *Controller[T]) Visible() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked()
}

// Items returns the collection as fetched, after local patches.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

func (c *Controller[T]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if c.opts.ID(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Upsert replaces the item with the same id or prepends it.
func (c *Controller[T]) Upsert(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.patches++
	id := c.opts.ID(item)
	for i, it := range c.items {
		if c.opts.ID(it) == id {
			c.items[i] = item
			return
		}
	}
	c.items = append([]T{item}, c.items...)
}

// Remove drops the item with id. Removing an absent id leaves the list unchanged.
func (c *Controller[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0:0]
	removed := false
	for _, it := range c.items {
		if c.opts.ID(it) == id {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	if !removed {
		return false
	}
	c.generation++
	c.patches++
	c.items = kept
	c.clampPageLocked()
	return true
}

// Modify applies fn to the item with id in place.
func (c *Controller[T]) Modify(id string, fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if c.opts.ID(it) == id {
			c.generation++
			c.patches++
			c.items[i] = fn(it)
			return true
		}
	}
	return false
}

func (c *Controller[T]) lookupSortKey(name string) (SortKey[T], bool) {
	for _, k := range c.opts.SortKeys {
		if k.Name == name {
			return k, true
		}
	}
	return SortKey[T]{}, false
}

func (c *Controller[T]) visibleLocked() []T {
	term := strings.ToLower(strings.TrimSpace(c.search))
	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if term != "" && !c.matchesSearch(it, term) {
			continue
		}
		if c.category != CategoryAll && c.opts.Category != nil && !c.matchesCategory(it) {
			continue
		}
		out = append(out, it)
	}

	if key, ok := c.lookupSortKey(c.sortKey); ok {
		if c.sortDir == Desc {
			sort.SliceStable(out, func(i, j int) bool { return key.Less(out[j], out[i]) })
		} else {
			sort.SliceStable(out, func(i, j int) bool { return key.Less(out[i], out[j]) })
		}
	}
	return out
}

func (c *Controller[T]) matchesSearch(it T, term string) bool {
	if c.opts.Search == nil {
		return true
	}
	for _, field := range c.opts.Search(it) {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (c *Controller[T]) matchesCategory(it T) bool {
	for _, cat := range c.opts.Category(it) {
		if strings.EqualFold(cat, c.category) {
			return true
		}
	}
	return false
}

func (c *Controller[T]) clampPageLocked() {
	c.page = clampPage(c.page, pageCount(len(c.visibleLocked()), c.opts.PageSize))
}

func pageCount(n, size int) int {
	return (n + size - 1) / size
}

// clampPage keeps p within [1, pages]; an empty list still sits on page 1.
func clampPage(p, pages int) int {
	if p > pages {
		p = pages
	}
	if p < 1 {
		p = 1
	}
	return p
}
