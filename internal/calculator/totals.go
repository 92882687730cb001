// Package calculator computes derived receipt totals, per-participant claim
// totals, and change detection between an edit session's snapshot and its
// working copy.
//
// Every function here is pure: no I/O, no stored state, and inputs are never
// mutated. Numeric inputs are not guarded against NaN or infinities; callers
// validate at the boundary and malformed numbers propagate as-is.
package calculator

import (
	"splitscan/internal/models"
)

// ItemTotal returns the total price of one line item.
func ItemTotal(item models.Item) float64 {
	return item.UnitPrice * item.Quantity
}

// Subtotal returns the sum of all item totals.
func Subtotal(items []models.Item) float64 {
	var sum float64
	for _, item := range items {
		sum += ItemTotal(item)
	}
	return sum
}

// Total returns the final receipt amount: subtotal + tax + tip.
func Total(items []models.Item, tax, tip float64) float64 {
	return Subtotal(items) + tax + tip
}

// ParticipantTotal returns the amount owed by one participant: the sum of
// item totals over every item that participant has claimed.
//
// An item claimed by N participants contributes its full total to each of
// them; the price is not divided among claimants. That is the behavior the
// product ships with, and totals_test.go pins it.
func ParticipantTotal(items []models.Item, participantID string) float64 {
	var sum float64
	for _, item := range items {
		for _, claimant := range item.ClaimedBy {
			if claimant == participantID {
				sum += ItemTotal(item)
				break
			}
		}
	}
	return sum
}

// ParticipantShare is one participant's rollup of claimed items.
type ParticipantShare struct {
	Participant models.Participant
	Total       float64
	Items       []models.Item
}

// Summarize computes each participant's claimed items and owed total.
// Shares are returned in participant order; participants with no claims get
// a zero share. Claims naming unknown participant IDs are ignored.
func Summarize(items []models.Item, participants []models.Participant) []ParticipantShare {
	shares := make([]ParticipantShare, len(participants))
	index := make(map[string]int, len(participants))
	for i, p := range participants {
		shares[i] = ParticipantShare{Participant: p}
		index[p.ID] = i
	}

	for _, item := range items {
		for _, claimant := range item.ClaimedBy {
			i, ok := index[claimant]
			if !ok {
				continue
			}
			shares[i].Total += ItemTotal(item)
			shares[i].Items = append(shares[i].Items, item)
		}
	}

	return shares
}
