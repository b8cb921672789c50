package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestSectionizeLouisvilleProduct(t *testing.T) {
	raw := loadFixture(t, "hwo_lmk.txt")

	s, err := Sectionize(raw)
	require.NoError(t, err)

	assert.Contains(t, s.HeaderLines, "National Weather Service Louisville KY")
	assert.Contains(t, s.HeaderLines, "Hazardous Weather Outlook")

	// The preamble issuance line repeats at the boundary and is deduplicated;
	// the second time zone line is kept verbatim.
	assert.Equal(t, []string{
		"642 AM EDT Fri May 10 2024",
		"542 AM CDT Fri May 10 2024",
	}, s.IssuedAt)

	require.Len(t, s.Sections, 4)
	assert.Equal(t, "DAY ONE", s.Sections[0].Title)
	assert.Equal(t, "DAYS TWO THROUGH SEVEN", s.Sections[1].Title)
	assert.Equal(t, TitleSpotterStatement, s.Sections[2].Title)
	assert.Equal(t, TitleStormMotion, s.Sections[3].Title)

	// The period tag after the ellipsis is the section's first line.
	require.NotEmpty(t, s.Sections[0].Lines)
	assert.Equal(t, "Today and tonight.", s.Sections[0].Lines[0])
}

func TestSectionizeNoClockLine(t *testing.T) {
	raw := "Hazardous Weather Outlook\nNational Weather Service Somewhere\n\n.DAY ONE...Today.\nNothing of note.\n"

	s, err := Sectionize(raw)
	require.ErrorIs(t, err, ErrMalformedBulletin)

	// Header lines still come back best-effort; no sections are extracted.
	assert.Contains(t, s.HeaderLines, "National Weather Service Somewhere")
	assert.Empty(t, s.Sections)
	assert.Empty(t, s.IssuedAt)
}

func TestSectionizeContinuesPastTerminators(t *testing.T) {
	raw := `Hazardous Weather Outlook
National Weather Service Louisville KY
642 AM EDT Fri May 10 2024

.DAY ONE...Today.

Quiet weather.

&&

.GENERAL STORM MOTION OF THE DAY...

Northeast at 30 mph.

$$
`

	s, err := Sectionize(raw)
	require.NoError(t, err)

	require.Len(t, s.Sections, 2)
	assert.Equal(t, TitleStormMotion, s.Sections[1].Title)
	assert.Equal(t, []string{"Northeast at 30 mph."}, s.Sections[1].Lines)
}

func TestSectionizeLegacyStormMotionForm(t *testing.T) {
	raw := `Hazardous Weather Outlook
National Weather Service Louisville KY
642 AM EDT Fri May 10 2024

.DAY ONE...Today.

Quiet weather.

General storm motion of the day: northeast at 30 mph.
`

	s, err := Sectionize(raw)
	require.NoError(t, err)

	require.Len(t, s.Sections, 2)
	assert.Equal(t, TitleStormMotion, s.Sections[1].Title)
	assert.Equal(t, []string{"northeast at 30 mph."}, s.Sections[1].Lines)
}

func TestSectionizeDiscardsLinesOutsideSections(t *testing.T) {
	raw := `Hazardous Weather Outlook
642 AM EDT Fri May 10 2024

Free-floating synopsis text before any section.

.DAY ONE...Today.

Quiet weather.

$$

BJS
`

	s, err := Sectionize(raw)
	require.NoError(t, err)

	require.Len(t, s.Sections, 1)
	assert.Equal(t, []string{"Today.", "", "Quiet weather."}, s.Sections[0].Lines)
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"already normal", "DAY ONE", "DAY ONE"},
		{"lower case", "day one", "DAY ONE"},
		{"extra whitespace", "  Days  Two Through   Seven ", "DAYS TWO THROUGH SEVEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTitle(tt.title))
		})
	}
}
