package services

import (
	"context"
	"sync"
	"time"

	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

type fakeCatalog struct {
	tables     []pg2duck.TableRef
	columns    map[pg2duck.TableRef][]pg2duck.Column
	tablesErr  error
	columnsErr error
	queries    []string
}

func (f *fakeCatalog) ListTables(_ context.Context, query string) ([]pg2duck.TableRef, error) {
	f.queries = append(f.queries, query)
	return f.tables, f.tablesErr
}

func (f *fakeCatalog) ListColumns(_ context.Context, ref pg2duck.TableRef) ([]pg2duck.Column, error) {
	if f.columnsErr != nil {
		return nil, f.columnsErr
	}
	return f.columns[ref], nil
}

type countingProvider struct {
	mu       sync.Mutex
	password string
	err      error
	calls    int
}

func (p *countingProvider) Password(_ context.Context) (string, time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.password, time.Time{}, p.err
}

func (p *countingProvider) String() string { return "test credentials" }

func (p *countingProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// stepClock returns successive times spaced by step.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(step)
		return t
	}
}

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// slowProvider stands in for a person typing the password.
type slowProvider struct {
	clock    *manualClock
	delay    time.Duration
	password string
}

func (p *slowProvider) Password(_ context.Context) (string, time.Time, error) {
	p.clock.Advance(p.delay)
	return p.password, time.Time{}, nil
}

func (p *slowProvider) String() string { return "slow credentials" }
