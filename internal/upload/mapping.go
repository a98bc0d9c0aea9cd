package upload

// BuildMapping returns reference -> URL for every successful outcome.
// Failed outcomes are left out; use Failures to inspect them.
func BuildMapping(outcomes []Outcome) map[string]string {
	mapping := make(map[string]string, len(outcomes))
	for _, out := range outcomes {
		if out.Succeeded() && out.Entry.URL != "" {
			mapping[out.Reference] = out.Entry.URL
		}
	}
	return mapping
}

// Failures returns the failed outcomes in input order.
func Failures(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, out := range outcomes {
		if !out.Succeeded() {
			failed = append(failed, out)
		}
	}
	return failed
}
