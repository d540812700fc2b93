package config

// DefaultExcludeKeywords returns the default title/description
// substrings that keep low-signal pages out of the index: mailbox
// views, login screens, and other chrome that would otherwise dominate
// similarity results.
func DefaultExcludeKeywords() []string {
	return []string{
		"Inbox",
		"Gmail",
		"ChatGPT",
		"Home",
		"LinkedIn",
		"Sign In",
		"Google Slides",
		"Google Search",
	}
}
