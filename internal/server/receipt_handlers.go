package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"splitscan/internal/calculator"
	"splitscan/internal/middleware"
	"splitscan/internal/models"
	"splitscan/internal/ocr"
)

type itemPayload struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	UnitPrice float64  `json:"unit_price"`
	Quantity  float64  `json:"quantity"`
	ClaimedBy []string `json:"claimed_by"`
}

type participantPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

type billPayload struct {
	BillID       string               `json:"bill_id,omitempty"`
	Title        string               `json:"title"`
	ImageURL     string               `json:"image_url"`
	Items        []itemPayload        `json:"items"`
	Participants []participantPayload `json:"participants"`
	Tax          float64              `json:"tax"`
	Tip          float64              `json:"tip"`
}

// toReceipt validates the payload and converts it to the domain model.
// Subtotal and total are derived here; the payload has no fields for them,
// so a client that sends them fails decoding.
func (p *billPayload) toReceipt(ownerID string) (*models.Receipt, error) {
	if p.Tax < 0 {
		return nil, fmt.Errorf("tax must not be negative")
	}
	if p.Tip < 0 {
		return nil, fmt.Errorf("tip must not be negative")
	}

	participantIDs := make(map[string]bool, len(p.Participants))
	participants := make([]models.Participant, len(p.Participants))
	for i, pp := range p.Participants {
		if pp.ID == "" {
			return nil, fmt.Errorf("participant %d: id is required", i)
		}
		if pp.Name == "" {
			return nil, fmt.Errorf("participant %d: name is required", i)
		}
		participantIDs[pp.ID] = true
		participants[i] = models.Participant{ID: pp.ID, Name: pp.Name, PhoneNumber: pp.PhoneNumber}
	}

	items := make([]models.Item, len(p.Items))
	for i, ip := range p.Items {
		if ip.Name == "" {
			return nil, fmt.Errorf("item %d: name is required", i)
		}
		if ip.UnitPrice < 0 {
			return nil, fmt.Errorf("item %q: unit_price must not be negative", ip.Name)
		}
		if ip.Quantity <= 0 {
			return nil, fmt.Errorf("item %q: quantity must be positive", ip.Name)
		}
		for _, claimant := range ip.ClaimedBy {
			if !participantIDs[claimant] {
				return nil, fmt.Errorf("item %q: claim references unknown participant %q", ip.Name, claimant)
			}
		}
		claimedBy := ip.ClaimedBy
		if claimedBy == nil {
			claimedBy = []string{}
		}
		items[i] = models.Item{
			ID:        ip.ID,
			Name:      ip.Name,
			UnitPrice: ip.UnitPrice,
			Quantity:  ip.Quantity,
			ClaimedBy: claimedBy,
		}
	}

	receipt := &models.Receipt{
		ID:           p.BillID,
		OwnerID:      ownerID,
		Title:        p.Title,
		ImageURL:     p.ImageURL,
		Items:        items,
		Participants: participants,
		Tax:          p.Tax,
		Tip:          p.Tip,
	}
	receipt.Subtotal = calculator.Subtotal(items)
	receipt.Total = calculator.Total(items, receipt.Tax, receipt.Tip)
	return receipt, nil
}

func toItemPayloads(items []models.Item) []itemPayload {
	out := make([]itemPayload, len(items))
	for i, item := range items {
		out[i] = itemPayload{
			ID:        item.ID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			ClaimedBy: item.ClaimedBy,
		}
	}
	return out
}

func toParticipantPayloads(participants []models.Participant) []participantPayload {
	out := make([]participantPayload, len(participants))
	for i, p := range participants {
		out[i] = participantPayload{ID: p.ID, Name: p.Name, PhoneNumber: p.PhoneNumber}
	}
	return out
}

// handleInsertBill persists a new receipt for the authenticated user.
func (s *Server) handleInsertBill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var payload billPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.BillID = "" // the store assigns IDs

	receipt, err := payload.toReceipt(userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.CreateReceipt(r.Context(), receipt); err != nil {
		slog.Error("Insert bill failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save bill")
		return
	}

	slog.Info("Bill created", "bill_id", receipt.ID, "user_id", userID,
		"items", len(receipt.Items), "total", receipt.Total)
	writeJSON(w, http.StatusCreated, map[string]string{"bill_id": receipt.ID})
}

// handleUpdateBill replaces an existing receipt's state. A request that
// changes nothing succeeds without touching storage.
func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var payload billPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.BillID == "" {
		writeError(w, http.StatusBadRequest, "bill_id is required")
		return
	}

	existing, err := s.store.GetReceipt(r.Context(), payload.BillID)
	if err != nil {
		writeError(w, http.StatusNotFound, "bill not found")
		return
	}
	if existing.OwnerID != userID {
		writeError(w, http.StatusForbidden, "you do not own this bill")
		return
	}

	receipt, err := payload.toReceipt(userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	receipt.CreatedAt = existing.CreatedAt

	original := calculator.TakeSnapshot(existing.Title, existing.Tax, existing.Items)
	changed := calculator.HasChanges(original, receipt.Title, receipt.Tax, receipt.Items) ||
		sharingChanged(existing, receipt)
	if !changed {
		writeJSON(w, http.StatusOK, map[string]interface{}{"bill_id": receipt.ID, "updated": false})
		return
	}

	if err := s.store.UpdateReceipt(r.Context(), receipt); err != nil {
		slog.Error("Update bill failed", "bill_id", receipt.ID, "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update bill")
		return
	}

	slog.Info("Bill updated", "bill_id", receipt.ID, "user_id", userID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"bill_id": receipt.ID, "updated": true})
}

// sharingChanged reports differences HasChanges does not cover: tip, image,
// participant list, and claims. Claims compare as sets since their insertion
// order carries no meaning.
func sharingChanged(existing, incoming *models.Receipt) bool {
	if existing.Tip != incoming.Tip || existing.ImageURL != incoming.ImageURL {
		return true
	}
	if len(existing.Participants) != len(incoming.Participants) {
		return true
	}
	for i, p := range incoming.Participants {
		if existing.Participants[i] != p {
			return true
		}
	}
	for i, item := range incoming.Items {
		if !sameClaimSet(existing.Items[i].ClaimedBy, item.ClaimedBy) {
			return true
		}
	}
	return false
}

func sameClaimSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

type getBillRequest struct {
	ID string `json:"id"`
}

type shareResponse struct {
	Participant participantPayload `json:"participant"`
	Total       float64            `json:"total"`
	ItemIDs     []string           `json:"item_ids"`
}

// handleGetBill returns a receipt's full detail plus the per-participant
// claim summary.
func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req getBillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "missing bill id")
		return
	}

	receipt, err := s.store.GetReceipt(r.Context(), req.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "bill not found")
		return
	}
	if receipt.OwnerID != userID {
		writeError(w, http.StatusForbidden, "you do not own this bill")
		return
	}

	shares := calculator.Summarize(receipt.Items, receipt.Participants)
	summary := make([]shareResponse, len(shares))
	for i, share := range shares {
		itemIDs := make([]string, len(share.Items))
		for j, item := range share.Items {
			itemIDs[j] = item.ID
		}
		summary[i] = shareResponse{
			Participant: participantPayload{
				ID:          share.Participant.ID,
				Name:        share.Participant.Name,
				PhoneNumber: share.Participant.PhoneNumber,
			},
			Total:   share.Total,
			ItemIDs: itemIDs,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bill_id":      receipt.ID,
		"title":        receipt.Title,
		"image_url":    receipt.ImageURL,
		"items":        toItemPayloads(receipt.Items),
		"participants": toParticipantPayloads(receipt.Participants),
		"tax":          receipt.Tax,
		"tip":          receipt.Tip,
		"subtotal":     receipt.Subtotal,
		"total":        receipt.Total,
		"created_at":   receipt.CreatedAt,
		"summary":      summary,
	})
}

// handleListBills returns summaries of the authenticated user's receipts.
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	receipts, err := s.store.ListReceiptsByOwner(r.Context(), userID)
	if err != nil {
		slog.Error("List bills failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list bills")
		return
	}

	summaries := make([]map[string]interface{}, len(receipts))
	for i, receipt := range receipts {
		summaries[i] = map[string]interface{}{
			"bill_id":           receipt.ID,
			"title":             receipt.Title,
			"total":             receipt.Total,
			"item_count":        len(receipt.Items),
			"participant_count": len(receipt.Participants),
			"created_at":        receipt.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"bills": summaries})
}

// handleDeleteBill removes a receipt the authenticated user owns.
func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req getBillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "missing bill id")
		return
	}

	receipt, err := s.store.GetReceipt(r.Context(), req.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "bill not found")
		return
	}
	if receipt.OwnerID != userID {
		writeError(w, http.StatusForbidden, "you do not own this bill")
		return
	}

	if err := s.store.DeleteReceipt(r.Context(), req.ID); err != nil {
		slog.Error("Delete bill failed", "bill_id", req.ID, "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete bill")
		return
	}

	slog.Info("Bill deleted", "bill_id", req.ID, "user_id", userID)
	writeJSON(w, http.StatusOK, map[string]string{"bill_id": req.ID})
}

type parseRequest struct {
	Text string `json:"text"`
}

// handleParseReceipt runs the extractor over pasted receipt text. Garbage
// input is not an error: it parses to zero items and zero tax/tip, and the
// user edits from there.
func (s *Server) handleParseReceipt(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	items := ocr.ParseReceiptText(req.Text)
	tax, tip := ocr.ExtractTaxAndTip(req.Text)

	if items == nil {
		items = []models.Item{}
	}
	slog.Debug("Parsed receipt text", "items", len(items), "tax", tax, "tip", tip)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": toItemPayloads(items),
		"tax":   tax,
		"tip":   tip,
	})
}
