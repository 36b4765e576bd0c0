// Package query parses raw search text into an immutable Query value.
//
// The grammar recognizes quoted phrases, required/forbidden prefixes (+/-),
// field directives (site:, intitle:, inbody:, inurl:, filetype:) and bang
// markers (!token). Unknown name:value directives are kept as plain terms.
//
// Parsing is total: any input that contains at least one non-whitespace
// character produces a Query. The canonical re-serialization of a Query
// re-parses to an equivalent Query, which keeps compiled-query caches and
// debug output stable.
package query
