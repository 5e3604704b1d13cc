package wordpool

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vocaquiz/vocaquiz/internal/model"
)

// LoadCSV reads a delimited word list export from the given path.
// Expected columns: id, headword, part of speech, translation. Rows
// missing any required field are dropped.
func LoadCSV(path string) (*Pool, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return ParseCSV(file)
}

// ParseCSV parses delimited rows from r into a pool. The delimiter is
// sniffed from the first line (`;` wins over `,` when present, matching
// the spreadsheet exports this tool consumes).
func ParseCSV(r io.Reader) (*Pool, error) {
	buffered := bufio.NewReader(r)
	head, err := buffered.Peek(1024)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	reader := csv.NewReader(buffered)
	reader.Comma = sniffDelimiter(head)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var entries []model.WordEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse word list: %w", err)
		}
		entry, ok := parseRow(record)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return New(entries)
}

func sniffDelimiter(head []byte) rune {
	firstLine := string(head)
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	if strings.ContainsRune(firstLine, ';') {
		return ';'
	}
	return ','
}

func parseRow(record []string) (model.WordEntry, bool) {
	if len(record) < 4 {
		return model.WordEntry{}, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		// Header rows and malformed ids are silently dropped.
		return model.WordEntry{}, false
	}
	entry := model.WordEntry{
		ID:           id,
		Headword:     strings.TrimSpace(record[1]),
		PartOfSpeech: normalizePOS(record[2]),
		Translation:  strings.TrimSpace(record[3]),
	}
	if entry.Headword == "" || entry.PartOfSpeech == "" || entry.Translation == "" {
		return model.WordEntry{}, false
	}
	return entry, true
}

// normalizePOS lowercases the tag and enforces a trailing dot, so that
// "n", "N." and "n." all compare equal for distractor grouping.
func normalizePOS(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	tag = strings.TrimSuffix(tag, ".")
	if tag == "" {
		return ""
	}
	return tag + "."
}
