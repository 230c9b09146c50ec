package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/MontaguSandwich/axelar-rewards-dashboard/domain"
	"github.com/jellydator/ttlcache/v3"
	"github.com/pkg/errors"
)

const (
	defaultEpochCount = 10
	maxEpochCount     = 100
)

type ReportProvider interface {
	VerifierReport(ctx context.Context, chain, verifier string, epochCount uint32) (*domain.ReconciliationReport, error)
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Handler serves reconciliation reports over plain JSON. A short-lived report
// cache absorbs repeated dashboard polls for the same verifier.
type Handler struct {
	provider    ReportProvider
	reportCache *ttlcache.Cache[string, *domain.ReconciliationReport]
	cacheLock   sync.Mutex
}

func NewHandler(provider ReportProvider, reportCache *ttlcache.Cache[string, *domain.ReconciliationReport]) *Handler {
	return &Handler{provider: provider, reportCache: reportCache}
}

func (h *Handler) GetVerifierRewards(w http.ResponseWriter, r *http.Request) {
	chain := r.PathValue("chain")
	verifier := r.PathValue("address")
	epochCount, err := parseEpochCount(r.URL.Query().Get("epochs"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.report(r.Context(), chain, verifier, epochCount)
	if errors.Is(err, domain.ErrConfiguration) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("Error creating report for [%s] on [%s]: %v", verifier, chain, err)
		http.Error(w, "Error creating report", 500)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(report)
	if err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "Error encoding response", 500)
		return
	}
}

func (h *Handler) report(ctx context.Context, chain, verifier string, epochCount uint32) (*domain.ReconciliationReport, error) {
	h.cacheLock.Lock() // lock so that we do not get multiple threads inside the `if`
	defer h.cacheLock.Unlock()

	key := fmt.Sprintf("%s/%s/%d", chain, verifier, epochCount)
	item := h.reportCache.Get(key)
	if item != nil {
		return item.Value(), nil
	}
	report, err := h.provider.VerifierReport(ctx, chain, verifier, epochCount)
	if err != nil {
		return nil, err
	}
	h.reportCache.Set(key, report, ttlcache.DefaultTTL)
	return report, nil
}

func (h *Handler) GetHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(HealthResponse{
		Status: "UP",
	})
	if err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "Error encoding response", 500)
		return
	}
}

func parseEpochCount(value string) (uint32, error) {
	if value == "" {
		return defaultEpochCount, nil
	}
	count, err := strconv.ParseUint(value, 10, 32)
	if err != nil || count == 0 || count > maxEpochCount {
		return 0, errors.Errorf("invalid epochs parameter [%s], expected 1-%d", value, maxEpochCount)
	}
	return uint32(count), nil
}
