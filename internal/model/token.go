package model

// TokenKind tags the variant held by a Token.
type TokenKind int

const (
	// TokenWord is a lower-cased word from visible text.
	TokenWord TokenKind = iota

	// TokenLink is an absolute, fragment-free outbound link.
	TokenLink
)

// String returns a human-readable representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenWord:
		return "word"
	case TokenLink:
		return "link"
	default:
		return "unknown"
	}
}

// Token is a single item of the tokenizer's output stream.
// Tokens are produced in document order and consumed once.
type Token struct {
	Kind  TokenKind
	Value string
}

// Word returns a word token.
func Word(w string) Token {
	return Token{Kind: TokenWord, Value: w}
}

// Link returns a link token.
func Link(u string) Token {
	return Token{Kind: TokenLink, Value: u}
}
