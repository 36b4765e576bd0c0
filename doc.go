// Package stract provides the serving-side query pipeline of a web search
// engine: query parsing, shortcut resolution, ranking-DSL compilation, shard
// fan-out and global result merging.
//
// # Quick Start
//
//	shard, _ := index.NewMemShard(0)
//	shard.Add(signal.Document{URL: "https://example.com/", Title: "Example"})
//
//	gens := index.NewGenerations(index.NewGeneration(1, []index.Shard{shard}))
//	s := stract.NewSearcher(gens)
//	defer s.Close()
//
//	resp, _ := s.Search(ctx, stract.Request{Query: "example", K: 10})
//	for _, r := range resp.Results {
//	    fmt.Println(r.URL, r.Score)
//	}
//
// # Query Language
//
// Queries support quoted phrases, exclusion with a leading minus, and the
// field directives site:, intitle:, inbody:, inurl: and filetype:. A query
// starting with a bang trigger ("!w rust") resolves to a redirect instead of
// a result page when the trigger is known.
//
// # Optics
//
// Ranking behavior is customized per query with optic scripts, a small DSL
// of match rules and signal weight overrides:
//
//	Rule {
//	    Matches: Site("example.com"),
//	    Action: Boost(2)
//	}
//	Like("docs.rs")
//	Ranking { name: "bm25_title", value: 6.0 }
//
// Compiled optics are cached and can be stored by name in any blob store.
//
// # Key Features
//
//   - Deterministic ranking: identical query, optic and index snapshot
//     produce identical result order
//   - Immutable index generations swapped atomically between queries
//   - Per-query shard deadline with graceful partial results
//   - Pluggable blob storage (memory, local disk, S3-compatible)
package stract
