// Package signal defines the fixed, versioned schema of ranking signals and
// computes per-document signal vectors at serve time.
//
// Text-relevance signals (bm25_title, bm25_body, bm25_url) are computed per
// indexed field against the query. Structural/static signals (centrality,
// freshness, tracker penalty, domain quality, URL shape) are attached to
// documents at index-build time and only looked up here; a missing static
// signal defaults to zero so an evolving index schema degrades gracefully.
//
// Every signal name an optic script may reference must exist in this schema;
// the optics compiler validates names via Lookup so the scorer stays total.
package signal
