package clock

import (
	"testing"
	"time"
)

func TestMonotonicTimeProviderAdvances(t *testing.T) {
	p := NewMonotonicTimeProvider()
	a := p.Now()
	b := p.Now()
	if b.Before(a) {
		t.Errorf("time went backwards: %v then %v", a, b)
	}
}

func TestMockTimeProvider(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMockTimeProvider(start)

	if !m.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", m.Now(), start)
	}

	m.Advance(250 * time.Millisecond)
	if want := start.Add(250 * time.Millisecond); !m.Now().Equal(want) {
		t.Errorf("after Advance: Now() = %v, want %v", m.Now(), want)
	}

	later := start.Add(time.Hour)
	m.SetTime(later)
	if !m.Now().Equal(later) {
		t.Errorf("after SetTime: Now() = %v, want %v", m.Now(), later)
	}
}
