package detector

// positiveWords returns the business-positive sentiment lexicon.
func positiveWords() map[string]bool {
	words := []string{
		"excellent", "great", "best", "leading", "reliable", "innovative",
		"trusted", "popular", "outstanding", "powerful", "recommended",
		"affordable", "efficient", "seamless", "robust", "impressive",
		"superior", "flexible", "intuitive", "comprehensive", "strong",
	}

	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// negativeWords returns the business-negative sentiment lexicon.
func negativeWords() map[string]bool {
	words := []string{
		"poor", "bad", "worst", "unreliable", "expensive", "limited",
		"outdated", "slow", "difficult", "complicated", "disappointing",
		"weak", "problematic", "buggy", "confusing", "inferior",
		"lacking", "frustrating", "overpriced", "clunky", "inconsistent",
	}

	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// candidateStopWords returns words and phrases that disqualify a mined
// competitor candidate. The list filters generic verb phrases, pronouns and
// sentence-lead words that the capitalized-phrase patterns otherwise pick up.
func candidateStopWords() map[string]bool {
	words := []string{
		// articles, pronouns, determiners
		"the", "a", "an", "this", "that", "these", "those", "it", "its",
		"they", "their", "there", "here", "some", "many", "most", "all",
		"any", "each", "every", "both", "other", "another", "such",
		// sentence-lead adverbs and connectives
		"however", "therefore", "additionally", "furthermore", "moreover",
		"also", "finally", "firstly", "secondly", "overall", "meanwhile",
		"although", "though", "while", "when", "where", "what", "which",
		"who", "whose", "why", "how", "if", "unless", "because", "since",
		"as", "so", "but", "and", "or", "nor", "yet", "for",
		// common verbs that start false-positive phrases
		"is", "are", "was", "were", "be", "been", "being", "have", "has",
		"had", "do", "does", "did", "can", "could", "will", "would",
		"shall", "should", "may", "might", "must", "using", "use", "used",
		"choose", "choosing", "consider", "considering", "check", "visit",
		"see", "read", "learn", "find", "get", "make", "try", "start",
		"based", "according", "depending", "including", "regarding",
		// generic nouns
		"please", "note", "example", "examples", "section", "step", "steps",
		"options", "option", "things", "people", "users", "customers",
		"companies", "businesses", "services", "products", "tools",
		"platforms", "solutions", "alternatives", "competitors", "brands",
		"others", "one", "two", "three", "top", "new", "more", "less",
		"in", "on", "at", "by", "of", "to", "from", "with", "without",
		"your", "our", "you", "we", "i", "my", "me", "its",
	}

	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
