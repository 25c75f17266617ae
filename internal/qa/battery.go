package qa

import (
	"fmt"
	"sort"
	"strings"
)

const (
	Legal15 = "legal15"
	Legal8  = "legal8"
)

var batteries = map[string][]string{
	Legal15: {
		"Who is the petitioner in the case?",
		"Who is the respondent in the case?",
		"What is the case summary?",
		"What was the court's decision?",
		"What legal provisions are applied?",
		"What were the main arguments from both sides?",
		"What is the reasoning behind the decision?",
		"Were there any precedents cited?",
		"Were there any dissenting opinions?",
		"What penalties or consequences were given?",
		"What are the implications of the case?",
		"What facts were established in the case?",
		"What evidence was presented?",
		"What are the key legal issues in the case?",
		"What is the timeline of events?",
	},
	Legal8: {
		"Who is the petitioner in the case?",
		"Who is the respondent in the case?",
		"What is the case summary?",
		"What was the court's decision?",
		"Were there any dissenting opinions?",
		"What evidence was presented?",
		"What are the key legal issues in the case?",
		"What was the timeline of events?",
	},
}

// Battery returns a fresh copy of the named question battery.
func Battery(name string) ([]string, error) {
	qs, ok := batteries[name]
	if !ok {
		names := make([]string, 0, len(batteries))
		for n := range batteries {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown question battery %q (known: %s)", name, strings.Join(names, ", "))
	}
	out := make([]string, len(qs))
	copy(out, qs)
	return out, nil
}
