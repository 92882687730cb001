package models

// Receipt represents a bill being split among participants.
// It stores the line items, the people involved, and which items each
// person has claimed.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string

	// OwnerID is the ID of the user who created the receipt.
	OwnerID string

	// Title is the human-readable name for the receipt.
	// Auto-generated from the creation date when empty.
	Title string

	// ImageURL is the optional stored location of the receipt photo.
	ImageURL string

	// Items are the individual line items on the receipt, in the order
	// they were extracted or entered.
	Items []Item

	// Participants is the list of people splitting this receipt.
	Participants []Participant

	// Tax is the tax amount on the receipt.
	Tax float64

	// Tip is the tip amount on the receipt.
	Tip float64

	// Subtotal is the derived pre-tax amount: the sum of item totals.
	// Recomputed on every write, never taken from callers.
	Subtotal float64

	// Total is the derived final amount: subtotal + tax + tip.
	Total float64

	// CreatedAt is the Unix timestamp when the receipt was created.
	CreatedAt int64
}

// Item represents a single line item on a receipt.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Name is the cleaned item description (e.g., "Burger", "Fries").
	Name string

	// UnitPrice is the price of a single unit of this item.
	UnitPrice float64

	// Quantity is how many units were purchased. May be fractional
	// (e.g., items sold by weight).
	Quantity float64

	// ClaimedBy holds the participant IDs who claimed this item.
	// Insertion order carries no meaning.
	ClaimedBy []string
}

// Participant represents one person splitting a receipt.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// Name is the participant's display name.
	Name string

	// PhoneNumber is used to send the participant their share.
	PhoneNumber string
}
