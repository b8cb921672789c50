package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	officeLineRe = regexp.MustCompile(`^National Weather Service\s+(.+?)\s*$`)

	// zoneCodeRe splits a full UGC code into alpha prefix and zone number.
	zoneCodeRe = regexp.MustCompile(`^([A-Z]{3})(\d{3})$`)

	// stampRe matches the DDHHMM expiration segment at the end of a UGC line.
	stampRe = regexp.MustCompile(`^\d{6}$`)

	zoneNumRe = regexp.MustCompile(`^\d{3}$`)
)

// ParseBulletin sectionizes and extracts a raw HWO product in one call.
// On ErrMalformedBulletin the returned Bulletin still carries whatever header
// fields could be determined.
func ParseBulletin(raw string) (Bulletin, error) {
	sectioned, err := Sectionize(raw)
	return Extract(sectioned), err
}

// Extract builds a structured Bulletin from sectionized output. Extraction is
// pure: identical input always yields an identical record.
func Extract(s Sectioned) Bulletin {
	b := Bulletin{
		IssuedAt: s.IssuedAt,
		Sections: make(map[string]string, len(s.Sections)),
	}

	extractHeader(&b, s.HeaderLines)

	for _, sec := range s.Sections {
		if _, dup := b.Sections[sec.Title]; !dup {
			b.SectionOrder = append(b.SectionOrder, sec.Title)
		}
		b.Sections[sec.Title] = strings.Join(sec.Lines, "\n")
	}

	if text, ok := b.Sections[TitleSpotterStatement]; ok {
		b.SpotterStatement = &text
	}
	if text, ok := b.Sections[TitleStormMotion]; ok {
		b.StormMotion = &text
	}

	return b
}

// extractHeader parses the office line, UGC block, and area-name list out of
// the header block. Lines before the UGC block are the product preamble.
func extractHeader(b *Bulletin, header []string) {
	ugcAt := -1
	for i, line := range header {
		t := strings.TrimSpace(line)
		if m := officeLineRe.FindStringSubmatch(t); m != nil {
			b.Office = m[1]
		}
		if ugcAt < 0 && ugcStartRe.MatchString(t) {
			ugcAt = i
		}
	}
	if ugcAt < 0 {
		return
	}

	// The UGC block is the contiguous run of code-charset lines (the wrapped
	// code list plus the expiration stamp line). Area names follow it.
	var ugc strings.Builder
	next := ugcAt
	for ; next < len(header); next++ {
		t := strings.TrimSpace(header[next])
		if !isUGCLine(t) {
			break
		}
		ugc.WriteString(t)
	}

	b.ZoneCodes = ExpandZones(ugc.String())
	b.AreaNames = parseAreaNames(header[next:])
}

// isUGCLine reports whether a line belongs to the UGC block. Code lines use
// only codes, ranges, and separators, and always contain digits, which
// distinguishes them from all-caps county names.
func isUGCLine(line string) bool {
	if line == "" || !strings.ContainsAny(line, "0123456789") {
		return false
	}
	for _, r := range line {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '>':
		default:
			return false
		}
	}
	return true
}

// ExpandZones expands a UGC code string into individual zone codes.
// "AAA076>079-083" yields AAA076 AAA077 AAA078 AAA079 AAA083. A bare numeric
// segment inherits the alpha prefix of the preceding code; six-digit
// expiration stamps are excluded. Duplicates in the source are preserved.
func ExpandZones(ugc string) []string {
	var zones []string
	prefix := ""

	for _, seg := range strings.Split(ugc, "-") {
		seg = strings.TrimSpace(seg)
		if seg == "" || stampRe.MatchString(seg) {
			continue
		}

		lo, hi, _ := strings.Cut(seg, ">")
		if m := zoneCodeRe.FindStringSubmatch(lo); m != nil {
			prefix, lo = m[1], m[2]
		}
		if prefix == "" || !zoneNumRe.MatchString(lo) {
			continue
		}

		start, _ := strconv.Atoi(lo)
		end := start
		if hi != "" {
			if m := zoneCodeRe.FindStringSubmatch(hi); m != nil {
				hi = m[2]
			}
			if zoneNumRe.MatchString(hi) {
				if n, _ := strconv.Atoi(hi); n >= start {
					end = n
				}
			}
		}

		for n := start; n <= end; n++ {
			zones = append(zones, fmt.Sprintf("%s%03d", prefix, n))
		}
	}

	return zones
}

// parseAreaNames joins the wrapped name list and splits it on "-". The list
// wraps at segment boundaries, so a line not ending in "-" is joined to the
// next with a space. Two-letter state suffixes ("Scott IN") stay inside the
// name.
func parseAreaNames(lines []string) []string {
	var joined strings.Builder
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if joined.Len() > 0 && !strings.HasSuffix(joined.String(), "-") {
			joined.WriteString(" ")
		}
		joined.WriteString(t)
	}

	var names []string
	for _, name := range strings.Split(joined.String(), "-") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
