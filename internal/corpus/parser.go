// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus parses sequentially numbered abstract records out of a
// plain-text export. Parsing is best-effort text extraction, not a
// strict grammar: malformed records are emitted with whatever fields
// were recoverable and counted, never fatal. The only fatal condition is
// undecodable input.
package corpus

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/screening-engine/pkg/types"
)

// TruncationMarker is appended to fields cut at the configured length limit.
const TruncationMarker = "... [TRUNCATED]"

// ParseError reports fundamentally unreadable input and aborts the run.
type ParseError struct {
	Offset  int // byte offset of the failure
	Line    int // 1-based line number
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("corpus unreadable at line %d (byte %d): %s", e.Line, e.Offset, e.Message)
}

// Stats aggregates the recoverable anomalies of one parse pass.
type Stats struct {
	Records   int // records emitted
	Skipped   int // empty entries discarded as parse noise
	Malformed int // records emitted with partially recovered fields
	Truncated int // fields cut at the length limit
}

// markerPattern matches a record-number marker at the start of a line: an
// integer followed by a period and whitespace.
var markerPattern = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)

// doiPattern matches a DOI anywhere in a line.
var doiPattern = regexp.MustCompile(`(?i)\b10\.\d{4,9}/[^\s]+`)

// doiContinuation matches a line ending mid-DOI, e.g. "doi.org/10." or
// "doi: 10.". The next line's leading digits then belong to the DOI, not
// to a record marker.
var doiContinuation = regexp.MustCompile(`(?i)doi(\.org/|:)\s*(10\.?)?$`)

// doiTail matches the remainder of a DOI wrapped onto the next line.
var doiTail = regexp.MustCompile(`^\d{4,9}/[^\s]+`)

// doiLabelTail matches a dangling DOI label ("doi:", "doi.org/",
// "https://doi.org/") left at the end of a line once the DOI text itself
// has been claimed.
var doiLabelTail = regexp.MustCompile(`(?i)(https?://)?((dx\.)?doi(\.org)?)?[:/]?\s*$`)

// authorRef matches the numbered-affiliation style of an author list,
// e.g. "Smith J(1), Jones K(2).".
var authorRef = regexp.MustCompile(`\(\d+\)`)

// authorList matches a whole line of comma-separated "Family IN" name
// tokens, e.g. "Author A" or "Smith JD, Jones K.". Anchored on both ends
// so capitalized title lines do not qualify.
var authorList = regexp.MustCompile(`^[A-Z][A-Za-z'-]+(?: [A-Z][A-Za-z'-]+)* [A-Z]{1,4}(?:\(\d+\))?(?:, ?[A-Z][A-Za-z'-]+(?: [A-Z][A-Za-z'-]+)* [A-Z]{1,4}(?:\(\d+\))?)*[.,]?$`)

// bodyEndMarkers terminate the abstract body; anything after them is
// record trailer metadata.
var bodyEndMarkers = []string{"©", "Copyright ", "PMID:", "PMCID:", "Conflict of interest"}

// Parse scans corpusText and returns the parsed records in source order.
// Parsing the same input twice yields identical records. The returned
// Stats carry every recoverable anomaly; the error is non-nil only for
// undecodable input.
func Parse(corpusText string, cfg types.LinkConfig) ([]types.RawAbstractRecord, Stats, error) {
	cfg = cfg.WithDefaults()
	corpusText = strings.TrimPrefix(corpusText, "\uFEFF")

	if idx := invalidUTF8Offset(corpusText); idx >= 0 {
		return nil, Stats{}, ParseError{
			Offset:  idx,
			Line:    1 + strings.Count(corpusText[:idx], "\n"),
			Message: "invalid UTF-8 encoding",
		}
	}

	lines := strings.Split(corpusText, "\n")
	starts := recordBoundaries(lines)

	var records []types.RawAbstractRecord
	var stats Stats
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		rec, ok := parseRecord(lines[start:end], cfg.MaxFieldLength, &stats)
		if !ok {
			stats.Skipped++
			continue
		}
		records = append(records, rec)
		stats.Records++
	}
	return records, stats, nil
}

// recordBoundaries returns the indices of lines that open a new record.
// A candidate marker counts only at the start of a line whose
// predecessor does not end mid-DOI, so a wrapped DOI such as
// "doi.org/10." + "\n1234/xyz" never masquerades as a record marker.
func recordBoundaries(lines []string) []int {
	var starts []int
	for i, line := range lines {
		if !markerPattern.MatchString(line) {
			continue
		}
		if i > 0 && doiContinuation.MatchString(strings.TrimRight(lines[i-1], " \t")) {
			continue
		}
		starts = append(starts, i)
	}
	return starts
}

type titleBreak int

const (
	breakNone titleBreak = iota
	breakAuthors
	breakBlank
	breakAbstract
)

// parseRecord extracts one record from its lines. The break heuristics
// for the end of the title run in priority order: author-list line,
// blank line, literal "Abstract" line; the first one encountered wins.
// The DOI is claimed first, so its characters never leak into the title,
// author block, or abstract body.
func parseRecord(recLines []string, maxField int, stats *Stats) (types.RawAbstractRecord, bool) {
	m := markerPattern.FindStringSubmatch(recLines[0])
	seq, err := strconv.Atoi(m[1])
	if err != nil {
		return types.RawAbstractRecord{}, false
	}

	doi, doiSpans := extractDOI(recLines)

	first := strings.TrimSpace(m[2])
	if span, ok := doiSpans[0]; ok {
		first = stripDOIText(first, span)
	}
	titleLines := []string{first}
	body := len(recLines)
	kind := breakNone
scan:
	for i := 1; i < len(recLines); i++ {
		line := strings.TrimSpace(recLines[i])
		switch {
		case isAuthorLine(line):
			kind, body = breakAuthors, i
			break scan
		case line == "":
			kind, body = breakBlank, i+1
			break scan
		case line == "Abstract":
			kind, body = breakAbstract, i+1
			break scan
		}
		if span, ok := doiSpans[i]; ok {
			line = stripDOIText(line, span)
			if line == "" {
				continue
			}
		}
		titleLines = append(titleLines, line)
	}
	title := strings.TrimSpace(strings.TrimSuffix(joinNonEmpty(titleLines), "."))

	// Author block: the run of consecutive author-looking lines after the
	// title break.
	var authorLines []string
	if kind == breakAuthors {
		for body < len(recLines) {
			line := strings.TrimSpace(recLines[body])
			if line == "" {
				body++
				break
			}
			if !isAuthorLine(line) {
				break
			}
			if span, ok := doiSpans[body]; ok {
				line = stripDOIText(line, span)
			}
			if line != "" {
				authorLines = append(authorLines, line)
			}
			body++
		}
	}

	var bodyLines []string
	for i := body; i < len(recLines); i++ {
		line := strings.TrimSpace(recLines[i])
		if isBodyEnd(line) {
			break
		}
		if span, ok := doiSpans[i]; ok {
			line = stripDOIText(line, span)
		}
		if line == "" {
			continue
		}
		bodyLines = append(bodyLines, line)
	}
	abstract := strings.Join(bodyLines, " ")

	rec := types.RawAbstractRecord{
		SequenceIndex: seq,
		Title:         clip(title, maxField, stats),
		AuthorBlock:   clip(joinNonEmpty(authorLines), maxField, stats),
		DOI:           doi,
		AbstractBody:  clip(abstract, maxField, stats),
	}
	if rec.Title == "" && rec.AbstractBody == "" {
		return types.RawAbstractRecord{}, false
	}
	if rec.Title == "" || rec.AbstractBody == "" {
		stats.Malformed++
	}
	return rec, true
}

// extractDOI scans every record line for a DOI. It handles DOIs wrapped
// across one line break by joining the halves. The returned spans map
// line index to the DOI text claimed from that line, so the abstract
// body never double-counts those characters.
func extractDOI(recLines []string) (string, map[int]string) {
	spans := make(map[int]string, 2)
	for i, raw := range recLines {
		line := strings.TrimSpace(raw)
		if m := doiPattern.FindString(line); m != "" {
			spans[i] = m
			return strings.TrimRight(m, "."), spans
		}
		c := doiContinuation.FindStringSubmatch(line)
		if c == nil || i+1 == len(recLines) {
			continue
		}
		tail := doiTail.FindString(strings.TrimSpace(recLines[i+1]))
		if tail == "" {
			continue
		}
		prefix := c[2] // "10." or "10", possibly empty
		if prefix == "" {
			continue
		}
		if !strings.HasSuffix(prefix, ".") {
			prefix += "."
		}
		spans[i] = c[0]
		spans[i+1] = tail
		return strings.TrimRight(prefix+tail, "."), spans
	}
	return "", spans
}

// stripDOIText removes the claimed DOI span and any dangling DOI label
// from a line, so no DOI character is double-counted in another field.
func stripDOIText(line, span string) string {
	line = strings.Replace(line, span, "", 1)
	line = doiLabelTail.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// isAuthorLine reports whether line looks like an author list.
func isAuthorLine(line string) bool {
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "Author information:") {
		return true
	}
	return authorRef.MatchString(line) || authorList.MatchString(line)
}

func isBodyEnd(line string) bool {
	for _, m := range bodyEndMarkers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}

// clip cuts a field at limit bytes (backing up to a rune boundary) and
// appends the truncation marker. Guards downstream storage against
// corpus corruption such as accidentally concatenated records.
func clip(s string, limit int, stats *Stats) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	stats.Truncated++
	return s[:cut] + TruncationMarker
}

func joinNonEmpty(lines []string) string {
	parts := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " ")
}

// invalidUTF8Offset returns the byte offset of the first invalid UTF-8
// sequence, or -1 when the string decodes cleanly.
func invalidUTF8Offset(s string) int {
	if utf8.ValidString(s) {
		return -1
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
