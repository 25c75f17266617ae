package qa

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuleBasedAnswerKeywords(t *testing.T) {
	cases := map[string]string{
		"Who is the PLAINTIFF?":                      "Based on the document, the petitioner appears to be John Smith.",
		"Who is the respondent in the case?":         "The respondent in this case is ABC Corporation.",
		"What was the Ruling?":                       "The court ruled in favor of the petitioner, finding that the patent was valid and infringed upon.",
		"What legal provisions are applied?":         "The court applied sections 101 and 103 of the Patent Act regarding patentability and non-obviousness.",
		"Were there any PRECEDENTS cited?":           "Several key precedents were cited including Diamond v. Diehr (1981).",
		"What penalties or consequences were given?": "The court ordered damages of $1.2 million and issued an injunction.",
		"What is the timeline of events?":            "The timeline spans from 2018 (patent filing) to 2022 (lawsuit).",
	}
	for q, want := range cases {
		require.Equal(t, want, RuleBasedAnswer(q, "irrelevant"), q)
	}
}

func TestRuleBasedAnswerFirstMatchWins(t *testing.T) {
	// "decision" outranks "reasoning"
	require.Equal(t,
		"The court ruled in favor of the petitioner, finding that the patent was valid and infringed upon.",
		RuleBasedAnswer("What is the reasoning behind the decision?", ""))
	// "legal" alone does not match the provision rule; "issue" does
	require.Equal(t, "Key legal issues were patent validity and infringement.",
		RuleBasedAnswer("What are the key legal issues in the case?", ""))
}

func TestRuleBasedAnswerDefaultCountsWords(t *testing.T) {
	ctx := "The  court\nheard the\tcase today "
	want := fmt.Sprintf("Based on my analysis of the document which is about %d words long, I cannot provide a specific answer to this question.", len(strings.Fields(ctx)))
	require.Equal(t, want, RuleBasedAnswer("Who paid the costs?", ctx))
	require.Contains(t, want, "about 6 words")
}
