package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gagyelog/gagyelog/internal/model"
)

// LineError records why one import line was rejected.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error { return e.Err }

// ImportResult holds the output of parsing a manual-entry import file.
type ImportResult struct {
	Entries []model.EntryInput
	Errors  []LineError
	Skipped int // blank and comment lines
}

// ParseEntriesFile opens path and parses it with ParseEntries.
func ParseEntriesFile(path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, err
	}
	defer func() { _ = f.Close() }()
	return ParseEntries(f)
}

// ParseEntries reads one JSON object per line. Every line is validated the
// same way a manual entry is; bad lines are collected in Errors and do not
// stop the rest of the file. Lines starting with '#' are ignored.
func ParseEntries(r io.Reader) (ImportResult, error) {
	var result ImportResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			result.Skipped++
			continue
		}

		var raw RawEntry
		if err := json.Unmarshal(line, &raw); err != nil {
			result.Errors = append(result.Errors, LineError{Line: lineNo, Err: err})
			continue
		}

		in, err := raw.toEntryInput()
		if err == nil {
			err = in.Validate()
		}
		if err != nil {
			result.Errors = append(result.Errors, LineError{Line: lineNo, Err: err})
			continue
		}
		result.Entries = append(result.Entries, in)
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("reading entries: %w", err)
	}
	return result, nil
}

func (e RawEntry) toEntryInput() (model.EntryInput, error) {
	in := model.EntryInput{
		Date:      e.Date,
		Shop:      e.Shop,
		ImagePath: e.ImagePath,
	}

	if amount, ok := ParseNumber(e.Amount); ok {
		in.Amount = amount
	}

	if len(e.Category) > 0 {
		var label string
		if err := json.Unmarshal(e.Category, &label); err != nil {
			id, ok := ParseNumber(e.Category)
			if !ok {
				return in, fmt.Errorf("category %s is neither an id nor a label", e.Category)
			}
			label = strconv.FormatInt(id, 10)
		}
		if c, ok := model.LookupCategory(label); ok {
			in.CategoryID = c.ID
		}
	}
	return in, nil
}
