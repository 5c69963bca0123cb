package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/starfront/starfront/internal/app/shop"
)

// ─── Shop API ───────────────────────────────────────────────────────────────
//
// GET  /api/shop/wallet    shop credits and uridium
// POST /api/shop/purchase  spend from the shop wallet

type walletResponse struct {
	Credits int64 `json:"credits"`
	Uridium int64 `json:"uridium"`
}

type purchaseRequest struct {
	Item    string `json:"item"`
	Credits int64  `json:"credits"`
	Uridium int64  `json:"uridium"`
}

// handleWallet returns the shop wallet balances.
// GET /api/shop/wallet
func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	c, u := s.wallet.Balances()
	writeJSON(w, http.StatusOK, walletResponse{Credits: c, Uridium: u})
}

// handlePurchase deducts a price from the shop wallet. The reward ledger's
// own balances are never touched.
// POST /api/shop/purchase
func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16*1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Credits < 0 || req.Uridium < 0 {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	if err := s.wallet.Spend(req.Credits, req.Uridium); err != nil {
		if errors.Is(err, shop.ErrInsufficientFunds) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	c, u := s.wallet.Balances()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"item":   req.Item,
		"wallet": walletResponse{Credits: c, Uridium: u},
	})
}
