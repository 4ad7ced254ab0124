// Package domain models panchayat-level flood risk data for Kerala.
//
// # Reference Data
//
// Kerala has fourteen districts. Each is identified by a two-digit code and has a
// fixed reference center used to place synthetic panchayat markers:
//
//	"01" Thiruvananthapuram ... "14" Kasaragod
//
// The table is compiled into the program ([Districts]) and never changes at runtime.
//
// # Panchayat Catalog
//
// Panchayats (the smallest local-government unit tracked) come from a static
// catalog of "<code>,<name>," lines, e.g.
//
//	D04001001,Aroor,
//
// The district code is the 2nd and 3rd characters of the panchayat code
// ("D04001001" -> "04" -> Alappuzha). Rows whose district code is not in the
// reference table are dropped by the seeder and counted, not treated as errors.
// Names are trimmed; the catalog contains stray leading and trailing spaces.
//
// # Risk Classification
//
// Risk is derived from a day's rainfall (mm) and river discharge:
//
//	score = (rainfall / 150) * 0.6 + (discharge / 200) * 0.4
//
//	  score > 0.7         High
//	  0.4 < score <= 0.7  Medium
//	  score <= 0.4        Low
//
// Boundary values fall to the lower bucket. The score is evaluated as
// (2*rainfall + discharge) / 500, which is the same expression with the constants
// folded so that boundary inputs such as rainfall=175 land exactly on 0.7.
// See [ClassifyRisk].
//
// # Synthetic History
//
// The seeder writes one reading per panchayat per day for the seven days ending
// today. Rainfall is uniform(0, 180) scaled by the panchayat's base risk, and
// discharge is rainfall times a per-reading factor in [1.1, 1.7).
package domain
