package domain

import (
	"errors"
	"regexp"
	"strings"
)

// ErrMalformedBulletin reports that no clock-time issuance line was found, so
// the header/body boundary cannot be located. Header fields preceding the
// boundary are still returned best-effort; only section extraction is lost.
var ErrMalformedBulletin = errors.New("malformed bulletin: no clock-time issuance line")

var (
	// clockTimeRe matches an NWS issuance line, e.g. "642 AM EDT Fri May 10 2024"
	// or "6:42 AM EDT Fri May 10 2024".
	clockTimeRe = regexp.MustCompile(`^\d{1,2}:?\d{2}\s+[AP]M\s+[A-Z]{2,5}\s+[A-Za-z]{3}\s+[A-Za-z]{3,9}\s+\d{1,2}\s+\d{4}\s*$`)

	// ugcStartRe matches the start of a UGC line, e.g. "INZ076>079-".
	ugcStartRe = regexp.MustCompile(`^[A-Z]{3}\d{3}[->]`)

	// sectionHeaderRe matches a dot-prefixed, ellipsis-terminated section
	// header. Anything after the ellipsis is the section's period tag,
	// e.g. ".DAY ONE...Today and tonight.".
	sectionHeaderRe = regexp.MustCompile(`^\.([A-Za-z][A-Za-z0-9 /-]*?)\.\.\.(.*)$`)

	// stormMotionRe matches the legacy colon form of the storm motion header.
	stormMotionRe = regexp.MustCompile(`(?i)^general storm motion of the day:?\s*(.*)$`)
)

// Sectionize splits a raw bulletin into its header block, issuance line(s),
// and ordered body sections. The header/body boundary is the first clock-time
// line after the UGC block (or the first clock-time line anywhere when no UGC
// line is present). When no clock-time line exists at all, the whole text is
// returned as header lines along with ErrMalformedBulletin.
func Sectionize(raw string) (Sectioned, error) {
	lines := splitLines(raw)

	boundary, issued := findBoundary(lines)
	if boundary < 0 {
		return Sectioned{HeaderLines: lines}, ErrMalformedBulletin
	}

	// Skip past the full run of consecutive clock-time lines at the boundary.
	bodyStart := boundary
	for bodyStart < len(lines) && clockTimeRe.MatchString(strings.TrimSpace(lines[bodyStart])) {
		bodyStart++
	}

	return Sectioned{
		HeaderLines: lines[:boundary],
		IssuedAt:    issued,
		Sections:    scanSections(lines[bodyStart:]),
	}, nil
}

// findBoundary locates the clock-time line that separates header from body
// and collects the issuance line(s). Returns -1 when no clock-time line exists.
//
// Products served by wwatxtget carry an office preamble with its own
// clock-time line before the UGC block; in that case the boundary is the
// first clock-time line after the UGC block, and the preamble line is folded
// into the issuance list (deduplicated, since it is normally a repeat).
func findBoundary(lines []string) (int, []string) {
	ugcAt := -1
	for i, line := range lines {
		if ugcStartRe.MatchString(strings.TrimSpace(line)) {
			ugcAt = i
			break
		}
	}

	var issued []string
	start := 0
	if ugcAt >= 0 {
		for _, line := range lines[:ugcAt] {
			if t := strings.TrimSpace(line); clockTimeRe.MatchString(t) {
				issued = append(issued, t)
			}
		}
		start = ugcAt
	}

	for i := start; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		if !clockTimeRe.MatchString(t) {
			continue
		}
		for j := i; j < len(lines); j++ {
			run := strings.TrimSpace(lines[j])
			if !clockTimeRe.MatchString(run) {
				break
			}
			issued = append(issued, run)
		}
		return i, dedupStrings(issued)
	}

	return -1, nil
}

// scanSections walks the body lines collecting (title, text) pairs. A "&&" or
// "$$" line closes the current section; lines outside any section (including
// the signature after the final terminator) are discarded.
func scanSections(body []string) []Section {
	var sections []Section
	var cur *Section

	flush := func() {
		if cur == nil {
			return
		}
		cur.Lines = trimBlankLines(cur.Lines)
		sections = append(sections, *cur)
		cur = nil
	}

	for _, line := range body {
		t := strings.TrimSpace(line)

		if t == "&&" || t == "$$" {
			flush()
			continue
		}

		if m := sectionHeaderRe.FindStringSubmatch(t); m != nil {
			flush()
			cur = &Section{Title: NormalizeTitle(m[1])}
			if tag := strings.TrimSpace(m[2]); tag != "" {
				cur.Lines = append(cur.Lines, tag)
			}
			continue
		}

		if m := stormMotionRe.FindStringSubmatch(t); m != nil {
			flush()
			cur = &Section{Title: TitleStormMotion}
			if rest := strings.TrimSpace(m[1]); rest != "" {
				cur.Lines = append(cur.Lines, rest)
			}
			continue
		}

		if cur != nil {
			cur.Lines = append(cur.Lines, line)
		}
	}

	flush()
	return sections
}

// NormalizeTitle upper-cases a section title and collapses interior whitespace.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToUpper(title)), " ")
}

func splitLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}

func trimBlankLines(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

func dedupStrings(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
