package lan

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/iudanet/clipsync/internal/auth"
	"github.com/iudanet/clipsync/internal/provider"
	"github.com/iudanet/clipsync/pkg/api"
)

const maxInboxSize = 1000

// inbox принимает элементы, которые пиры отправили этому устройству.
type inbox struct {
	logger *slog.Logger
	items  map[string]*api.SyncItem
	limit  int
	mu     sync.Mutex
}

func newInbox(logger *slog.Logger, limit int) *inbox {
	if limit <= 0 {
		limit = maxInboxSize
	}
	return &inbox{logger: logger, items: make(map[string]*api.SyncItem), limit: limit}
}

// put сохраняет элемент; при переполнении вытесняется самый старый
func (b *inbox) put(item *api.SyncItem) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cur, ok := b.items[item.ID]; ok && cur.Timestamp > item.Timestamp {
		return
	}
	b.items[item.ID] = item
	if len(b.items) <= b.limit {
		return
	}
	var oldest *api.SyncItem
	for _, it := range b.items {
		if oldest == nil || it.Timestamp < oldest.Timestamp {
			oldest = it
		}
	}
	delete(b.items, oldest.ID)
	b.logger.Warn("Peer inbox full, oldest item evicted",
		"item_id", oldest.ID,
		"device_id", oldest.DeviceID,
		"timestamp", oldest.Timestamp,
		"limit", b.limit)
}

func (b *inbox) after(since int64) []*api.SyncItem {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]*api.SyncItem, 0, len(b.items))
	for _, it := range b.items {
		if it.Timestamp > since {
			cp := *it
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp < result[j].Timestamp })
	return result
}

// peerHandler обслуживает HTTP API, через которое пиры обмениваются элементами
type peerHandler struct {
	clock  clockwork.Clock
	logger *slog.Logger
	source provider.ItemSource
	inbox  *inbox
	tokens *auth.TokenConfig
}

func newPeerHandler(logger *slog.Logger, source provider.ItemSource, box *inbox, clock clockwork.Clock) *peerHandler {
	return &peerHandler{clock: clock, logger: logger, source: source, inbox: box}
}

func (h *peerHandler) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /peer/v1/health", h.health)
	mux.HandleFunc("GET /peer/v1/changes", h.requireToken(h.changes))
	mux.HandleFunc("POST /peer/v1/items", h.requireToken(h.receive))
	return mux
}

func (h *peerHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", Timestamp: h.clock.Now().UnixMilli()})
}

func (h *peerHandler) changes(w http.ResponseWriter, r *http.Request) {
	since, err := strconv.ParseInt(r.URL.Query().Get("since"), 10, 64)
	if err != nil {
		since = 0
	}

	var items []*api.SyncItem
	if h.source != nil {
		items, err = h.source.WireItemsAfter(r.Context(), since)
		if err != nil {
			h.logger.Error("Failed to read items for peer", "error", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to read items")
			return
		}
	}

	resp := api.ChangesResponse{Items: make([]api.SyncItem, 0, len(items)), Cursor: since}
	for _, it := range items {
		resp.Items = append(resp.Items, *it)
		if it.Timestamp > resp.Cursor {
			resp.Cursor = it.Timestamp
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *peerHandler) receive(w http.ResponseWriter, r *http.Request) {
	var item api.SyncItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if item.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "item id is required")
		return
	}

	h.inbox.put(&item)
	h.logger.Debug("Item received from peer", "item_id", item.ID, "device_id", item.DeviceID)
	writeJSON(w, http.StatusOK, api.PutItemResponse{ID: item.ID, Version: item.Version, Applied: true})
}

// requireToken проверяет Bearer токен, если задан общий секрет
func (h *peerHandler) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.tokens == nil {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		if _, err := auth.ValidateDeviceToken(*h.tokens, token); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: code, Message: msg})
}
