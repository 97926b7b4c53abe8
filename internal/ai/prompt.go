package ai

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

func systemPrompt(subject, userLevel string) string {
	return fmt.Sprintf("You are an expert %s tutor with 20 years of experience. "+
		"Explain why the correct answer is correct in a clear, educational way suitable for a %s level student. "+
		"Break down the reasoning step by step. Use simple language and provide examples if helpful.",
		subject, userLevel)
}

func userPrompt(req ExplanationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "QUESTION: %s\n\nOPTIONS:\n", req.QuestionText)
	for _, opt := range req.Options {
		marker := ""
		if opt.Correct {
			marker = " (Correct Answer)"
		}
		fmt.Fprintf(&b, "%s. %s%s\n", opt.ID, opt.Text, marker)
	}
	fmt.Fprintf(&b, "\nCORRECT ANSWER: %s\n\n", req.CorrectAnswer)
	fmt.Fprintf(&b, "Provide a detailed explanation that:\n"+
		"1. Clearly states why option %s is correct\n"+
		"2. Explains why each of the other options is incorrect\n"+
		"3. Includes relevant formulas, rules, or concepts\n"+
		"4. Offers tips for solving similar questions\n"+
		"Make it SHORT and CONCISE. Format with <br/> for line breaks and <b> for important terms. Target level: %s.",
		req.CorrectAnswer, req.levelOrDefault())
	return b.String()
}

var (
	boldRe   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.*?)\*`)
)

// formatExplanation converts the model's light markdown into the HTML-ish
// format the clients render, and makes sure the correct answer is stated
// up front.
func formatExplanation(text, correctAnswer string) string {
	formatted := strings.ReplaceAll(text, "\n\n", "<br/><br/>")
	formatted = strings.ReplaceAll(formatted, "\n", "<br/>")
	formatted = boldRe.ReplaceAllString(formatted, "<b>$1</b>")
	formatted = italicRe.ReplaceAllString(formatted, "<i>$1</i>")

	upper := strings.ToUpper(correctAnswer)
	if !strings.Contains(formatted, upper) {
		formatted = fmt.Sprintf("<b>The correct answer is %s.</b><br/><br/>%s", upper, formatted)
	}
	return formatted
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// diagramURL builds a free text-to-image URL for a simple educational
// diagram of the question topic.
func diagramURL(questionText, subject string, seed int) string {
	clean := htmlTagRe.ReplaceAllString(questionText, "")
	if len(clean) > 60 {
		clean = clean[:60]
	}
	prompt := fmt.Sprintf("Educational diagram for %s: %s. Clean, simple, textbook style, white background, informative labels.",
		subject, strings.TrimSpace(clean))
	return fmt.Sprintf("https://image.pollinations.ai/prompt/%s?width=600&height=400&seed=%d&model=flux&nologo=true",
		url.PathEscape(prompt), seed)
}

// commonMistakes derives per-option pitfalls locally; no model call needed.
func commonMistakes(req ExplanationRequest) []string {
	var mistakes []string
	for _, opt := range req.Options {
		if opt.Correct || opt.ID == req.CorrectAnswer {
			continue
		}
		mistakes = append(mistakes, fmt.Sprintf("Choosing option %s: %s", opt.ID, opt.Text))
	}
	return mistakes
}

// FallbackExplanation is returned when the model is unreachable. It still
// names the correct answer so the student is not left with nothing.
func FallbackExplanation(correctAnswer string) string {
	return fmt.Sprintf("<b>The correct answer is %s.</b><br/><br/>"+
		"We could not generate a detailed explanation right now. "+
		"This option aligns with the fundamental principles of the subject; "+
		"review your textbook or notes for similar examples.",
		strings.ToUpper(correctAnswer))
}
