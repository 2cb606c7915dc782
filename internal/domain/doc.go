// Package domain models Data Commons observations and the enriched rows built from them.
//
// # Data Source
//
// Observations come from the Data Commons website API
// (https://datacommons.org/api/observations/...). A point response holds, per
// variable and entity, the observation closest to the requested date; a
// series response holds the full ascending time series. Both responses carry a
// FacetStore describing where each observation came from.
//
// # Data Commons Conventions
//
// Identifiers:
//
//	Entities and variables are named by dcid, e.g. "geoId/06" (California)
//	or "Count_Person" (total population).
//
// Dates:
//
//	ISO-8601 prefixes at the precision of the source: "2023", "2023-05",
//	"2023-05-01". Dates sort lexically. Distances between dates are measured
//	on the parsed instant, with partial dates at the start of their period.
//
// Facets:
//
//	A facet names an import (importName, provenanceUrl) and its unit. The
//	scalingFactor says how published values relate to the unit, e.g. values
//	already stored in thousands. It arrives as a number or a numeric string
//	and defaults to 1.
//
// Missing data:
//
//	An absent observation is encoded as an empty object and an absent series
//	as an empty list. Both are treated as "no observation" by the Lookup
//	methods, never as zero.
//
// # Per-Capita Values
//
// A per-capita value divides a numerator observation by the Count_Person
// observation closest in date, then by the numerator facet's scaling factor.
// The population series is taken from the numerator's own facet when an
// import publishes both, and from the unfiltered default otherwise. A zero
// population yields 0. See [ComputeRatio] and [DenominatorSet.Select].
package domain
