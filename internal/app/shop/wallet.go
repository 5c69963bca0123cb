// Package shop holds the upgrade shop's wallet, a mirror of the ledger's
// credits and uridium that the shop spends from.
package shop

import (
	"errors"
	"log"
	"math"
	"sync"

	"github.com/starfront/starfront/internal/domain"
)

// ErrInsufficientFunds is returned by Spend when the wallet cannot cover a price.
var ErrInsufficientFunds = errors.New("insufficient funds")

// WalletStore persists wallet balances.
type WalletStore interface {
	SaveWallet(profile string, credits, uridium int64) error
	LoadWallet(profile string) (credits, uridium int64, err error)
}

// Wallet implements domain.MirrorStore.
type Wallet struct {
	mu      sync.Mutex
	profile string
	credits int64
	uridium int64
	store   WalletStore // nil = memory only
}

var _ domain.MirrorStore = (*Wallet)(nil)

// NewWallet creates a wallet for profile, loading its balances from store
// when one is given.
func NewWallet(profile string, store WalletStore) (*Wallet, error) {
	w := &Wallet{profile: profile, store: store}
	if store != nil {
		c, u, err := store.LoadWallet(profile)
		if err != nil {
			return nil, err
		}
		w.credits, w.uridium = c, u
	}
	return w, nil
}

// AddCredits mirrors a ledger credit.
func (w *Wallet) AddCredits(amount int64) { w.add(&w.credits, amount) }

// AddUridium mirrors a ledger uridium credit.
func (w *Wallet) AddUridium(amount int64) { w.add(&w.uridium, amount) }

func (w *Wallet) add(bal *int64, amount int64) {
	if amount <= 0 {
		return
	}
	w.mu.Lock()
	if amount > math.MaxInt64-*bal {
		*bal = math.MaxInt64
	} else {
		*bal += amount
	}
	w.mu.Unlock()
	w.persist()
}

// Spend deducts a price from the wallet. Either both amounts are deducted or
// neither is.
func (w *Wallet) Spend(credits, uridium int64) error {
	if credits < 0 || uridium < 0 {
		return errors.New("negative price")
	}
	w.mu.Lock()
	if w.credits < credits || w.uridium < uridium {
		w.mu.Unlock()
		return ErrInsufficientFunds
	}
	w.credits -= credits
	w.uridium -= uridium
	w.mu.Unlock()
	w.persist()
	return nil
}

// Balances returns the current credits and uridium.
func (w *Wallet) Balances() (credits, uridium int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.credits, w.uridium
}

// persist writes through to the store. Failures are logged; the mirror is
// best-effort and never blocks a reward.
func (w *Wallet) persist() {
	if w.store == nil {
		return
	}
	c, u := w.Balances()
	if err := w.store.SaveWallet(w.profile, c, u); err != nil {
		log.Printf("[shop] persist wallet %s: %v", w.profile, err)
	}
}
