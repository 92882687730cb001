package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReceiptTextSingleLinePatterns(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantName  string
		wantPrice float64
		wantQty   float64
	}{
		{"name and price", "Burger $12.99", "Burger", 12.99, 1},
		{"explicit qty suffix", "Wings $8.00 Qty: 3", "Wings", 8.00, 3},
		{"hyphen separator", "Salad -$7.25", "Salad", 7.25, 1},
		{"multiplier suffix", "Pizza $12.99 x 2", "Pizza", 12.99, 2},
		{"leading item number stripped", "1 Burger $5.00", "Burger", 5.00, 1},
		{"leading symbols stripped", "** Special $2.00", "Special", 2.00, 1},
		{"integer price", "Soda $2", "Soda", 2.00, 1},
		{"multiword name", "Iced Green Tea $4.50", "Iced Green Tea", 4.50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := ParseReceiptText(tt.line)
			require.Len(t, items, 1)
			assert.Equal(t, tt.wantName, items[0].Name)
			assert.Equal(t, tt.wantPrice, items[0].UnitPrice)
			assert.Equal(t, tt.wantQty, items[0].Quantity)
			assert.NotEmpty(t, items[0].ID)
			assert.Empty(t, items[0].ClaimedBy)
		})
	}
}

func TestParseReceiptTextTwoLineFallback(t *testing.T) {
	items := ParseReceiptText("Coffee\n$3.50")
	require.Len(t, items, 1)
	assert.Equal(t, "Coffee", items[0].Name)
	assert.Equal(t, 3.50, items[0].UnitPrice)
	assert.Equal(t, 1.0, items[0].Quantity)

	// The price line is consumed: it must not produce a second item or pair
	// with the line after it.
	items = ParseReceiptText("Coffee\n$3.50\nMuffin\n$2.25")
	require.Len(t, items, 2)
	assert.Equal(t, "Coffee", items[0].Name)
	assert.Equal(t, "Muffin", items[1].Name)
}

func TestParseReceiptTextSkipsMetadataLines(t *testing.T) {
	lines := []string{
		"Total $20.00",
		"Subtotal $17.50",
		"Tax $1.65",
		"Tip: $3.00",
		"VISA ****1234",
		"Mastercard ending 4567",
		"01/15/2024",
		"12:45 PM",
		"#1042",
		"Thank you for dining with us!",
		"Cash $40.00",
		"Change $2.35",
		"Transaction 99182",
		"Store #12",
	}
	for _, line := range lines {
		assert.Empty(t, ParseReceiptText(line), "line %q should not produce an item", line)
	}
}

func TestParseReceiptTextMetadataNameRejectedInFallback(t *testing.T) {
	// "Total" would pair with the bare price below it, but metadata markers
	// are filtered before the fallback ever sees them.
	items := ParseReceiptText("Total\n$20.00")
	assert.Empty(t, items)
}

func TestParseReceiptTextGuards(t *testing.T) {
	t.Run("zero price dropped", func(t *testing.T) {
		assert.Empty(t, ParseReceiptText("Freebie $0"))
	})
	t.Run("name that cleans to empty dropped", func(t *testing.T) {
		assert.Empty(t, ParseReceiptText("123 $4.99"))
	})
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ParseReceiptText(""))
		assert.Empty(t, ParseReceiptText("   \n \n\t"))
	})
	t.Run("garbage input never errors", func(t *testing.T) {
		assert.Empty(t, ParseReceiptText("~~~!!!\nqwerty\n$$$$"))
	})
}

func TestParseReceiptTextFullReceipt(t *testing.T) {
	text := "Burger $12.99\nFries $4.50\nTax $1.65\nTip $3.00"

	items := ParseReceiptText(text)
	require.Len(t, items, 2)
	assert.Equal(t, "Burger", items[0].Name)
	assert.Equal(t, 12.99, items[0].UnitPrice)
	assert.Equal(t, 1.0, items[0].Quantity)
	assert.Equal(t, "Fries", items[1].Name)
	assert.Equal(t, 4.50, items[1].UnitPrice)

	tax, tip := ExtractTaxAndTip(text)
	assert.Equal(t, 1.65, tax)
	assert.Equal(t, 3.00, tip)
}

func TestParseReceiptTextPreservesLineOrder(t *testing.T) {
	text := "Zucchini $3.00\nApple $1.00\nMango $2.00"
	items := ParseReceiptText(text)
	require.Len(t, items, 3)
	assert.Equal(t, "Zucchini", items[0].Name)
	assert.Equal(t, "Apple", items[1].Name)
	assert.Equal(t, "Mango", items[2].Name)
}

func TestParseReceiptTextGeneratesUniqueIDs(t *testing.T) {
	items := ParseReceiptText("Burger $5.00\nBurger $5.00")
	require.Len(t, items, 2)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestExtractTaxAndTip(t *testing.T) {
	t.Run("defaults to zero", func(t *testing.T) {
		tax, tip := ExtractTaxAndTip("Burger $12.99")
		assert.Zero(t, tax)
		assert.Zero(t, tip)
	})

	t.Run("colon and no dollar sign", func(t *testing.T) {
		tax, tip := ExtractTaxAndTip("Tax: 1.23\nTip: 4.56")
		assert.Equal(t, 1.23, tax)
		assert.Equal(t, 4.56, tip)
	})

	t.Run("last occurrence wins", func(t *testing.T) {
		tax, _ := ExtractTaxAndTip("Tax $1.00\nSales Tax $2.00")
		assert.Equal(t, 2.00, tax)
	})

	t.Run("matches mid-line", func(t *testing.T) {
		tax, _ := ExtractTaxAndTip("State tax $0.88 applied")
		assert.Equal(t, 0.88, tax)
	})
}
