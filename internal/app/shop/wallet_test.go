package shop

import (
	"errors"
	"math"
	"testing"
)

type memStore struct {
	credits, uridium int64
	saves            int
	failSave         error
	failLoad         error
}

func (m *memStore) SaveWallet(_ string, c, u int64) error {
	if m.failSave != nil {
		return m.failSave
	}
	m.credits, m.uridium = c, u
	m.saves++
	return nil
}

func (m *memStore) LoadWallet(string) (int64, int64, error) {
	return m.credits, m.uridium, m.failLoad
}

func TestWallet_MirrorsCredits(t *testing.T) {
	w, err := NewWallet("pilot", nil)
	if err != nil {
		t.Fatal(err)
	}
	w.AddCredits(500)
	w.AddUridium(2)
	w.AddCredits(0)
	w.AddUridium(-3)

	c, u := w.Balances()
	if c != 500 || u != 2 {
		t.Errorf("Balances() = %d, %d, want 500, 2", c, u)
	}
}

func TestWallet_LoadsAndPersists(t *testing.T) {
	store := &memStore{credits: 100, uridium: 1}
	w, err := NewWallet("pilot", store)
	if err != nil {
		t.Fatalf("NewWallet() error: %v", err)
	}
	w.AddCredits(50)

	if store.credits != 150 || store.uridium != 1 {
		t.Errorf("stored = %d, %d, want 150, 1", store.credits, store.uridium)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}

func TestWallet_LoadError(t *testing.T) {
	if _, err := NewWallet("pilot", &memStore{failLoad: errors.New("disk")}); err == nil {
		t.Error("NewWallet() should surface load errors")
	}
}

func TestWallet_SaveErrorIsSwallowed(t *testing.T) {
	w, _ := NewWallet("pilot", &memStore{})
	w.store.(*memStore).failSave = errors.New("disk full")
	w.AddCredits(10)

	if c, _ := w.Balances(); c != 10 {
		t.Errorf("credits = %d, want 10 despite persist failure", c)
	}
}

func TestWallet_Saturates(t *testing.T) {
	w, _ := NewWallet("pilot", nil)
	w.AddCredits(math.MaxInt64 - 1)
	w.AddCredits(10)
	if c, _ := w.Balances(); c != math.MaxInt64 {
		t.Errorf("credits = %d, want MaxInt64", c)
	}
}

func TestWallet_Spend(t *testing.T) {
	w, _ := NewWallet("pilot", nil)
	w.AddCredits(100)
	w.AddUridium(5)

	if err := w.Spend(200, 0); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Spend(200, 0) = %v, want ErrInsufficientFunds", err)
	}
	if err := w.Spend(60, 6); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Spend(60, 6) = %v, want ErrInsufficientFunds", err)
	}
	if c, u := w.Balances(); c != 100 || u != 5 {
		t.Errorf("failed spend changed balances: %d, %d", c, u)
	}
	if err := w.Spend(60, 5); err != nil {
		t.Fatalf("Spend(60, 5) error: %v", err)
	}
	if c, u := w.Balances(); c != 40 || u != 0 {
		t.Errorf("Balances() = %d, %d, want 40, 0", c, u)
	}
	if err := w.Spend(-1, 0); err == nil {
		t.Error("negative price should fail")
	}
}
