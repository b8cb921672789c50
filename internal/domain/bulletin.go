package domain

// Section is one titled narrative block from a bulletin body.
type Section struct {
	Title string
	Lines []string
}

// Sectioned is the line-level decomposition of a raw bulletin produced by
// Sectionize: the header block, the verbatim issuance line(s), and the
// ordered body sections.
type Sectioned struct {
	HeaderLines []string
	IssuedAt    []string
	Sections    []Section
}

// Bulletin is the structured form of one Hazardous Weather Outlook product.
// Zero-valued fields mean the source bulletin did not carry the information.
type Bulletin struct {
	// Office is the issuing office as printed on the "National Weather
	// Service <City> <ST>" line, e.g. "Louisville KY".
	Office string `json:"office,omitempty"`

	// ZoneCodes are the expanded UGC codes in listed order. Duplicates in
	// the source are preserved.
	ZoneCodes []string `json:"zone_codes"`

	// AreaNames are the human-readable names following the UGC block, one
	// per zone group.
	AreaNames []string `json:"area_names"`

	// IssuedAt holds the verbatim clock-time line(s). Dual-time-zone offices
	// print two.
	IssuedAt []string `json:"issued_at"`

	// Sections maps normalized section titles to narrative text.
	Sections map[string]string `json:"sections"`

	// SectionOrder lists the normalized titles in document order.
	SectionOrder []string `json:"section_order,omitempty"`

	// SpotterStatement is the SPOTTER INFORMATION STATEMENT section, nil
	// when the office did not publish one.
	SpotterStatement *string `json:"spotter_statement,omitempty"`

	// StormMotion is the GENERAL STORM MOTION OF THE DAY section, nil when
	// absent.
	StormMotion *string `json:"storm_motion,omitempty"`
}

// Titles of the convenience sections extracted into dedicated fields.
const (
	TitleSpotterStatement = "SPOTTER INFORMATION STATEMENT"
	TitleStormMotion      = "GENERAL STORM MOTION OF THE DAY"
)
