// Package crawler turns fetched HTML into the token stream the admission
// gate consumes.
//
// # Components
//
//   - Tokenizer: lazily yields Word and Link tokens in document order
//
// Only visible body text produces words; style, script, head, title, meta,
// noscript and template subtrees are skipped whole. Anchors yield absolute,
// fragment-free links unless they are same-page fragments, point at
// mailto:, javascript:, tel: or data: targets, or carry rel="nofollow".
//
// # Usage
//
//	tok, err := crawler.NewTokenizer(page.BaseURL())
//	for t := range tok.Tokens(page.Raw, page.ContentType) {
//		...
//	}
//
// # Security Considerations
//
// Pages are untrusted input. Parsing never fails the caller: malformed
// markup is repaired by the HTML5 tree builder and anything unparseable
// yields no tokens. Callers bound input size before tokenizing.
package crawler
