// Package domain models National Weather Service (NWS) Hazardous Weather
// Outlook (HWO) bulletins and the alert events matched against the rule
// configuration.
//
// # Bulletin Wire Format
//
// HWO products are fixed-format plain text. A typical product, as served by
// the forecast.weather.gov wwatxtget endpoint, looks like:
//
//	Hazardous Weather Outlook
//	National Weather Service Louisville KY
//	642 AM EDT Fri May 10 2024
//
//	INZ076>079-083-084-089>092-KYZ023>043-111045-
//	Orange IN-Washington IN-Scott IN-Jefferson IN-...
//	642 AM EDT Fri May 10 2024
//
//	This Hazardous Weather Outlook is for portions of southern Indiana...
//
//	.DAY ONE...Today and tonight.
//
//	<narrative>
//
//	.SPOTTER INFORMATION STATEMENT...
//
//	<narrative>
//
//	&&
//	$$
//
// # Universal Geographic Codes
//
// The UGC line names the affected zones or counties. Segments are separated
// by "-"; a ">" encodes an inclusive range. A segment is either a full code
// ("INZ076"), a bare three-digit number that inherits the alpha prefix of
// the preceding code ("083" after "INZ076" means "INZ083"), or a range
// ("INZ076>079" expands to INZ076 INZ077 INZ078 INZ079). The final six-digit
// segment is a DDHHMM expiration stamp, not a zone. The UGC line may wrap
// across physical lines.
//
// # Area Names
//
// The lines after the UGC block list one human-readable name per zone group,
// separated by "-". Names may carry a two-letter state suffix when two states
// share a name ("Scott IN" vs "Scott KY"); the suffix is part of the name.
// The list wraps at segment boundaries.
//
// # Issuance Time
//
// A clock-time line ("642 AM EDT Fri May 10 2024") separates the header from
// the body. Offices that straddle a time zone boundary print two consecutive
// clock-time lines, one per zone; both are retained verbatim. No time zone
// math is performed here: %Z-style parsing of NWS zone abbreviations is
// unreliable, so the strings are kept as issued.
//
// # Sections
//
// Body sections open with a dot-prefixed, ellipsis-terminated header
// (".SPOTTER INFORMATION STATEMENT..."). Per-day headers carry a period tag
// after the ellipsis (".DAY ONE...Today and tonight."), which becomes the
// first text line of the section. "&&" and "$$" terminate a section; text
// after the final terminator (forecaster signature) is discarded. Some
// offices print the storm motion line in the legacy colon form ("General
// storm motion of the day: ..."), which is recognized as a section header
// for the same title.
package domain
