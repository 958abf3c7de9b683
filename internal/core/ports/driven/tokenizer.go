package driven

// TokenCounter estimates how many model tokens a text occupies.
type TokenCounter interface {
	// Count returns the token count for text.
	Count(text string) int
}
