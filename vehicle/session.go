package vehicle

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/baxtbl4b/app-goroshina/config"
	"github.com/baxtbl4b/app-goroshina/fitment"
	"github.com/baxtbl4b/app-goroshina/supplier"
)

// Source is where a session fetches vendor data from
type Source interface {
	Fitment(ctx context.Context, brand, model, year string) ([]fitment.Record, error)
	Search(ctx context.Context, query string) ([]supplier.Model, error)
}

type UpdateKind int

const (
	// UpdateModels carries model search results
	UpdateModels UpdateKind = iota
	// UpdateFitment carries a resolved fitment for the full selection
	UpdateFitment
)

// Update is a message sent by a session when fetched data arrives
type Update struct {
	Kind   UpdateKind
	Query  string
	Models []supplier.Model

	Selection Selection
	Result    fitment.Result

	Err error
}

// Selection is the brand/model/year picked so far
type Selection struct {
	Brand string
	Model string
	Year  string
}

// Complete reports whether brand, model and year are all set
func (s Selection) Complete() bool {
	return s.Brand != "" && s.Model != "" && s.Year != ""
}

// Session tracks one user's vehicle selection. Fitment is resolved only
// when brand, model and year are all set. Model search is debounced.
// Results arrive on Updates; stale results are dropped.
type Session struct {
	src   Source
	delay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	sel         Selection
	selGen      uint64
	searchGen   uint64
	searchTimer *time.Timer
	closed      bool

	updates chan Update
}

// NewSession creates a session. A zero delay uses config.SearchDebounce.
func NewSession(src Source, delay time.Duration) *Session {
	if delay <= 0 {
		delay = config.SearchDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		src:     src,
		delay:   delay,
		ctx:     ctx,
		cancel:  cancel,
		updates: make(chan Update, 8),
	}
}

// Updates delivers fetched results. The channel is never closed.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// Selection returns the current selection
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// SetBrand selects a brand and clears the model and year
func (s *Session) SetBrand(brand string) {
	s.update(func(sel *Selection) {
		*sel = Selection{Brand: strings.TrimSpace(brand)}
	})
}

// SetModel selects a model and clears the year
func (s *Session) SetModel(model string) {
	s.update(func(sel *Selection) {
		sel.Model = strings.TrimSpace(model)
		sel.Year = ""
	})
}

// SetYear selects a year, resolving fitment once the selection is complete
func (s *Session) SetYear(year string) {
	s.update(func(sel *Selection) {
		sel.Year = strings.TrimSpace(year)
	})
}

func (s *Session) update(change func(*Selection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	prev := s.sel
	change(&s.sel)
	if s.sel == prev {
		return
	}
	s.selGen++

	if !s.sel.Complete() {
		return
	}

	sel, gen := s.sel, s.selGen
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.resolve(sel, gen)
	}()
}

func (s *Session) resolve(sel Selection, gen uint64) {
	records, err := s.src.Fitment(s.ctx, sel.Brand, sel.Model, sel.Year)
	if err != nil {
		log.Printf("[vehicle] Fitment fetch failed for %s/%s/%s: %v", sel.Brand, sel.Model, sel.Year, err)
	}

	s.mu.Lock()
	stale := s.closed || gen != s.selGen
	s.mu.Unlock()
	if stale {
		return
	}

	s.send(Update{
		Kind:      UpdateFitment,
		Selection: sel,
		Result:    fitment.Resolve(records),
		Err:       err,
	})
}

// Search schedules a model search. Only the last query of a burst
// arriving within the debounce delay is sent.
func (s *Session) Search(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.stopSearchLocked()
	s.searchGen++

	query := strings.TrimSpace(text)
	if len(query) < config.SearchMinLength {
		return
	}

	gen := s.searchGen
	s.wg.Add(1)
	s.searchTimer = time.AfterFunc(s.delay, func() {
		defer s.wg.Done()
		s.search(query, gen)
	})
}

func (s *Session) stopSearchLocked() {
	if s.searchTimer != nil && s.searchTimer.Stop() {
		// The callback will never run, so it cannot call Done
		s.wg.Done()
	}
	s.searchTimer = nil
}

func (s *Session) search(query string, gen uint64) {
	models, err := s.src.Search(s.ctx, query)
	if err != nil {
		log.Printf("[vehicle] Model search failed for %q: %v", query, err)
	}

	s.mu.Lock()
	stale := s.closed || gen != s.searchGen
	s.mu.Unlock()
	if stale {
		return
	}

	s.send(Update{Kind: UpdateModels, Query: query, Models: models, Err: err})
}

func (s *Session) send(u Update) {
	select {
	case s.updates <- u:
	case <-s.ctx.Done():
	}
}

// Close stops pending searches and waits for in-flight fetches
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopSearchLocked()
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
