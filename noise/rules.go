package noise

// Rule is one named junk predicate over the messages table. Where is a SQL
// condition fragment evaluated against the message row; rules are trusted
// configuration, never user input.
type Rule struct {
	Name  string
	Where string
}

// DefaultRules returns the junk predicates applied to the message archive,
// in reporting order. A message matching several rules is still reported
// once in the union; the per-rule counts may overlap.
func DefaultRules() []Rule {
	return []Rule{
		{"Tool role messages", `role = 'tool'`},
		{"Very short (<30 chars)", `LENGTH(content) < 30`},
		{"<<ImageDisplayed>> placeholders", `content LIKE '%<<ImageDisplay%'`},
		{"Error tracebacks", `content LIKE '%Traceback%'`},
		{"click()/mclick() commands", `content LIKE 'click(%' OR content LIKE 'mclick(%'`},
		{"scroll() commands", `content LIKE 'scroll(%'`},
		{"search() calls", `content LIKE 'search("%'`},
		{"JSON object content", `content LIKE '{"query":%' OR content LIKE '{"type":%'`},
		{"Short error messages", `content LIKE 'Error %' AND LENGTH(content) < 200`},
		{"Fetch/timeout errors", `content LIKE '%Failed to fetch%' OR content LIKE '%Timeout fetching%'`},
	}
}
