// Package source decodes ledger data from the backend and from import files.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gagyelog/gagyelog/internal/model"
)

// ErrNotArray is returned when a ledger body is not a JSON array.
var ErrNotArray = errors.New("source: ledger body is not a JSON array")

// DecodeResult holds the output of decoding a ledger response.
type DecodeResult struct {
	Transactions []model.Transaction
	// Malformed counts elements that were skipped or had a numeric field
	// zero-defaulted.
	Malformed int
}

// DecodeReceipts decodes a ledger array element by element. An element that
// is not an object is skipped; a missing or malformed amount or category is
// zero-defaulted. Either case is counted in Malformed. Only a body that is
// not an array at all is an error.
func DecodeReceipts(body []byte) (DecodeResult, error) {
	var result DecodeResult

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return result, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return result, fmt.Errorf("%w: %v", ErrNotArray, err)
	}

	result.Transactions = make([]model.Transaction, 0, len(elems))
	for _, elem := range elems {
		var raw RawReceipt
		if err := json.Unmarshal(elem, &raw); err != nil {
			result.Malformed++
			continue
		}
		tx, clean := raw.toTransaction()
		if !clean {
			result.Malformed++
		}
		result.Transactions = append(result.Transactions, tx)
	}
	return result, nil
}

// toTransaction converts a raw receipt, reporting whether every numeric
// field decoded cleanly.
func (r RawReceipt) toTransaction() (model.Transaction, bool) {
	clean := true

	id, ok := ParseNumber(r.ReceiptID)
	if !ok {
		clean = false
	}
	amount, ok := ParseNumber(r.TotalPrice)
	if !ok {
		clean = false
	}
	category, ok := ParseNumber(r.KeywordID)
	if !ok {
		clean = false
	}

	tx := model.NewTransaction(id, r.Date, int(category), r.Shop, amount)
	tx.ImagePath = r.ImagePath
	tx.Deleted = parseFlag(r.IsDeleted)
	return tx, clean
}

// ParseNumber parses an integer field sent as a number or numeric string.
// Handles JSON numbers (5000 or 5000.0) and strings ("5000", "5,000", "5000원").
func ParseNumber(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	// Exact integers first, then floats (covers 5000.0 and 1e3)
	var i int64
	if err := json.Unmarshal(raw, &i); err == nil {
		return i, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return roundToInt64(f)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "원")
		s = strings.ReplaceAll(s, ",", "")
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v, true
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return roundToInt64(v)
		}
	}

	return 0, false
}

// roundToInt64 rounds f to the nearest integer, rejecting values outside
// the int64 range.
func roundToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Round(f)
	if f >= 1<<63 || f < -(1<<63) {
		return 0, false
	}
	return int64(f), true
}

// parseFlag reads a soft-delete flag sent as a bool, 0/1, or "Y"/"N".
func parseFlag(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	if n, ok := ParseNumber(raw); ok {
		return n != 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "y", "yes", "true":
			return true
		}
	}
	return false
}
