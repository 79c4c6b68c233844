package domain

// UnmatchedReport lists what one source has that the other does not. It is
// diagnostic output only; unmatched data is never merged and never blocks a
// scan. Leagues on the known-unmatched list are filtered out before the
// report is built so operators only see genuinely surprising gaps.
type UnmatchedReport struct {
	Source  Source               `json:"source"`
	Leagues []string             `json:"leagues"`
	Games   map[string][]RawGame `json:"games"`
}

// Empty reports whether nothing was unmatched.
func (r UnmatchedReport) Empty() bool {
	return len(r.Leagues) == 0 && len(r.Games) == 0
}
