// Package optics compiles ranking-customization scripts into immutable rule
// sets.
//
// The DSL is statement oriented and order significant:
//
//	Rule { Matches: Site("*.example.com") | Url("*/download/*"), Action: Boost(2.0) }
//	Rule { Matches: Path("/ads/*"), Action: Discard }
//	Ranking { bm25_title: 2.0, host_centrality: 0.5 }
//	Like("docs.example.com")
//	Dislike("spam.example.com")
//
// Patterns use glob-style wildcards and are pre-compiled so scoring never
// re-parses them. Ranking overrides replace the default weight for the named
// signal; names outside the signal schema fail compilation. Like and Dislike
// desugar into site boost/downrank rules, and Like additionally appends the
// host to the preference list used for tie-breaking.
//
// Compilation is pure: the same source always compiles to an equivalent rule
// set, and a compiled optic re-serializes to a canonical source that compiles
// back to an equivalent rule set. That makes compiled optics safe to cache by
// script hash; Cache provides a bounded LRU with singleflight-deduped
// compilation.
package optics
