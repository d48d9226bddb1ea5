package suggest

import (
	"fmt"
	"strings"
)

// buildPrompt asks the model to map each unclassified description to one of
// the known categories and to name the keyword that should trigger it.
func buildPrompt(categories []string, descriptions []DescriptionCount) string {
	var b strings.Builder

	b.WriteString("You help maintain a keyword taxonomy for personal finance transactions.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- For each transaction description below, pick the most appropriate category.\n")
	b.WriteString("- Propose ONE short lower-case keyword that appears in the description and identifies it.\n")
	b.WriteString("- Skip descriptions that fit no category.\n\n")

	b.WriteString("Use ONLY the following categories:\n")
	for _, c := range categories {
		b.WriteString("  - " + c + "\n")
	}
	b.WriteString("\n")

	b.WriteString("Descriptions (with number of occurrences):\n")
	for _, d := range descriptions {
		fmt.Fprintf(&b, "  - %q (%d)\n", d.Description, d.Count)
	}
	b.WriteString("\n")

	b.WriteString("Output a JSON array of objects with these fields:\n")
	b.WriteString("- \"description\": string, copied exactly from the list\n")
	b.WriteString("- \"category\": string, EXACTLY one of the categories above\n")
	b.WriteString("- \"keyword\": string\n\n")
	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Output must begin with \"[\" and end with \"]\".\n")

	return b.String()
}
