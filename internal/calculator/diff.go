package calculator

import (
	"splitscan/internal/models"
)

// Snapshot captures the editable state of a receipt at the start of an edit
// session. It is taken once, compared against the working copy to decide
// whether Save and Reset apply, and restored when the user discards changes.
type Snapshot struct {
	Title string
	Tax   float64
	Items []models.Item
}

// TakeSnapshot deep-copies the editable fields so later mutations of the
// working copy cannot leak into the captured original.
func TakeSnapshot(title string, tax float64, items []models.Item) Snapshot {
	return Snapshot{
		Title: title,
		Tax:   tax,
		Items: copyItems(items),
	}
}

// Restore returns deep copies of the captured state. Calling Restore twice
// in a row yields the same state as calling it once.
func (s Snapshot) Restore() (title string, tax float64, items []models.Item) {
	return s.Title, s.Tax, copyItems(s.Items)
}

// HasChanges reports whether the working copy differs from the captured
// original. Title and tax use exact comparison (no epsilon), and the item
// sequences are compared positionally: a difference in length, or in any
// position's id, name, quantity, or unit price, counts as a change.
// Reordering items therefore counts even when the sets are equal.
func HasChanges(original Snapshot, title string, tax float64, items []models.Item) bool {
	if original.Title != title || original.Tax != tax {
		return true
	}
	if len(original.Items) != len(items) {
		return true
	}
	for i, item := range items {
		orig := original.Items[i]
		if orig.ID != item.ID ||
			orig.Name != item.Name ||
			orig.Quantity != item.Quantity ||
			orig.UnitPrice != item.UnitPrice {
			return true
		}
	}
	return false
}

func copyItems(items []models.Item) []models.Item {
	if items == nil {
		return nil
	}
	out := make([]models.Item, len(items))
	for i, item := range items {
		out[i] = item
		if item.ClaimedBy != nil {
			out[i].ClaimedBy = append([]string(nil), item.ClaimedBy...)
		}
	}
	return out
}
