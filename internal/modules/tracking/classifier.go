package tracking

import "strings"

// Known AI client/crawler tokens and chat-service referrer domains. Both
// lists are maintained by hand and drift over time; false positives and
// negatives are accepted, this is a heuristic.
var (
	aiUserAgents = []string{
		"GPT",
		"ChatGPT",
		"GPTBot",
		"Googlebot",
		"Bingbot",
		"Anthropic",
		"Claude",
		"PerplexityBot",
	}

	aiReferrers = []string{
		"chat.openai.com",
		"chatgpt.com",
		"bard.google.com",
		"gemini.google.com",
		"bing.com/chat",
		"claude.ai",
		"perplexity.ai",
	}
)

// IsAIReferral reports whether a request looks AI-originated, by
// case-insensitive substring match of the user agent against known AI client
// tokens, or of the referrer against known AI chat domains. Empty inputs
// never match.
func IsAIReferral(userAgent, referrer string) bool {
	ua := strings.ToLower(userAgent)
	for _, token := range aiUserAgents {
		if ua != "" && strings.Contains(ua, strings.ToLower(token)) {
			return true
		}
	}

	ref := strings.ToLower(referrer)
	for _, domain := range aiReferrers {
		if ref != "" && strings.Contains(ref, domain) {
			return true
		}
	}
	return false
}
