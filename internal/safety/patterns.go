package safety

import "regexp"

// Risk categories reported alongside RED and YELLOW classifications.
const (
	CategorySelfHarm     = "self_harm"
	CategoryViolence     = "violence"
	CategoryIllegal      = "illegal"
	CategoryHate         = "hate"
	CategoryMedical      = "medical"
	CategoryManipulation = "manipulation"
	CategoryVulnerable   = "vulnerable"
)

// patternGroup binds one risk category to its detection patterns.
type patternGroup struct {
	category string
	patterns []*regexp.Regexp
}

// redGroups are evaluated in declaration order; the first match wins and
// short-circuits classification.
var redGroups = []patternGroup{
	{
		category: CategorySelfHarm,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bwant\s+to\s+die\b`),
			regexp.MustCompile(`\bkill\s+myself\b`),
			regexp.MustCompile(`\bsuicid`),
			regexp.MustCompile(`\bself[-\s]?harm`),
			regexp.MustCompile(`\bend\s+(my\s+life|it\s+all)\b`),
			regexp.MustCompile(`\bwant\s+to\s+disappear\b`),
			regexp.MustCompile(`\bhurt\s+myself\b`),
		},
	},
	{
		category: CategoryViolence,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bkill\s+(him|her|them|you)\b`),
			regexp.MustCompile(`\bbeat\s+(him|her|them)\s+up\b`),
			regexp.MustCompile(`\bassault`),
			regexp.MustCompile(`\babus(e|ing|ed)\b`),
			regexp.MustCompile(`\bthreaten`),
		},
	},
	{
		category: CategoryIllegal,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bnarcotics\b`),
			regexp.MustCompile(`\bbuy\s+drugs\b`),
			regexp.MustCompile(`\bfraud\b`),
			regexp.MustCompile(`\bhidden\s+camera\b`),
			regexp.MustCompile(`\billegal\s+(filming|recording)\b`),
		},
	},
	{
		category: CategoryHate,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bracial\s+slur`),
			regexp.MustCompile(`\bincit(e|ing)\s+violence\b`),
			regexp.MustCompile(`\bhate\s+crime`),
		},
	},
}

// yellowGroups are only evaluated when no RED pattern matched. Every match
// is recorded: several weak signals together matter to a human reviewer.
var yellowGroups = []patternGroup{
	{
		category: CategoryMedical,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bdiagnose\s+me\b`),
			regexp.MustCompile(`\bprescri(be|ption)`),
			regexp.MustCompile(`\bwhat\s+medication\b`),
			regexp.MustCompile(`\brecommend\s+(a\s+)?(pill|drug|medication)`),
		},
	},
	{
		category: CategoryManipulation,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bcontrol\s+(him|her|them)\b`),
			regexp.MustCompile(`\brevenge\b`),
			regexp.MustCompile(`\bthreatening\s+message`),
			regexp.MustCompile(`\bmanipulat`),
		},
	},
	{
		category: CategoryVulnerable,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bminor\b`),
			regexp.MustCompile(`\bunderage\b`),
			regexp.MustCompile(`\belementary\s+school`),
			regexp.MustCompile(`\bmiddle\s+school`),
			regexp.MustCompile(`\bhigh\s+school`),
		},
	},
}

// falsePositivePatterns downgrade an otherwise RED/YELLOW hit to GREEN.
// Negation ("don't want to disappear"), quoted speech and past-tense
// markers describe risk without expressing it. Checked before any risk
// pattern runs.
var falsePositivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bdon'?t\s+want\b`),
	regexp.MustCompile(`\bdo\s+not\s+want\b`),
	regexp.MustCompile(`\bnot\s+going\s+to\b`),
	regexp.MustCompile(`\bwon'?t\b`),
	regexp.MustCompile(`\bnever\s+(want(ed)?|would|thought)\b`),
	regexp.MustCompile(`"[^"]+"`),
	regexp.MustCompile(`“[^”]+”`),
	regexp.MustCompile(`\bused\s+to\b`),
	regexp.MustCompile(`\bback\s+then\b`),
	regexp.MustCompile(`\bin\s+the\s+past\b`),
	regexp.MustCompile(`\bsaid\s+that\b`),
}
