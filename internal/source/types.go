package source

import "encoding/json"

// RawReceipt is a single element of the backend's ledger array.
// Numeric fields are kept as raw JSON because the backend has sent them
// as numbers, numeric strings, and nulls.
type RawReceipt struct {
	ReceiptID  json.RawMessage `json:"receiptId"`
	Date       string          `json:"date"`
	Shop       string          `json:"shop"`
	TotalPrice json.RawMessage `json:"totalPrice"`
	KeywordID  json.RawMessage `json:"keywordId"`
	ImagePath  string          `json:"imagePath,omitempty"`
	IsDeleted  json.RawMessage `json:"isDeleted,omitempty"`
}

// RawEntry is one line of a manual-entry import file.
// Category may be a numeric ID or a category label.
type RawEntry struct {
	Date      string          `json:"date"`
	Category  json.RawMessage `json:"category"`
	Shop      string          `json:"shop,omitempty"`
	Amount    json.RawMessage `json:"amount"`
	ImagePath string          `json:"imagePath,omitempty"`
}
