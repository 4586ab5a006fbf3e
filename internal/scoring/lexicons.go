package scoring

// Keyword lexicons backing the deterministic analyzers. These are data,
// not code: adjusting a table changes scoring without touching control
// flow, and the tables are exercised directly by tests.

// positiveStrong raise the situation score the most.
var positiveStrong = []string{
	"hope", "grateful", "happy", "love", "dream", "success", "joy", "excited",
}

// positiveMedium raise the situation score moderately.
var positiveMedium = []string{
	"want", "wish", "effort", "improve", "develop", "grow", "better",
}

// negativeSevere cut the situation score hard.
var negativeSevere = []string{
	"suicide", "want to die", "give up", "end it all",
}

// negativeHeavy cut the situation score when they cluster.
var negativeHeavy = []string{
	"hard", "difficult", "depressed", "anxious", "worried", "afraid",
}

// willKeywords signal intent to change.
var willKeywords = []string{
	"want to", "wish", "improve", "develop", "change", "grow", "start", "become",
}

// effortKeywords signal concrete follow-through.
var effortKeywords = []string{
	"effort", "try", "attempt", "challenge", "decided", "determined",
}

// supportKeywords signal a helping environment.
var supportKeywords = []string{
	"together", "help", "support", "encourage", "family", "friend",
}

// urgentKeywords signal timing pressure that favors acting now.
var urgentKeywords = []string{
	"now", "quickly", "urgent", "immediately", "right away", "soon",
}

// goalKeywords signal a concrete, nameable objective.
var goalKeywords = []string{
	"new job", "job change", "pass the exam", "marriage", "start a business", "graduate",
}

// positiveEmotions are the structured emotion answers that count as
// favorable in the deep-response analysis.
var positiveEmotions = []string{"hopeful", "peaceful", "excited"}
