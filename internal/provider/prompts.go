// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// selectionPromptTmpl asks the model to pick target vocabulary and summarize
// the news context the article will be written from.
var selectionPromptTmpl = template.Must(template.New("selection").Parse(`You are the editorial planner for a graded-reading news site for language learners. Pick the vocabulary and story focus for today's article.

{{if .Topic}}Topic preference: {{.Topic}}
{{end}}Target date: {{.Date}}

Candidate vocabulary words:
{{.Words}}

{{if .News}}Candidate news stories:
{{.News}}
{{else}}No candidate stories were gathered. Choose a current, broadly interesting story for the topic yourself.
{{end}}
Select 3 to 6 candidate words that fit one coherent news story, and write a short factual summary (3-5 sentences) of that story to write the article from. List the URLs of any stories you drew on.

Respond with a JSON object only:
{"words": ["..."], "summary": "...", "source_urls": ["..."]}
`))

// planPromptTmpl asks for a structural blueprint consumed verbatim by the
// draft stage.
var planPromptTmpl = template.Must(template.New("plan").Parse(`You are planning a short news article for language learners.

{{if .Topic}}Topic: {{.Topic}}
{{end}}Story summary:
{{.Summary}}

Target vocabulary (each word must appear in the article):
{{.Words}}

Produce a structural plan: headline, paragraph-by-paragraph outline (3-5 paragraphs, one line each), and where each target word will be used. Plain text, no JSON.
`))

// draftPromptTmpl asks for the article text itself.
var draftPromptTmpl = template.Must(template.New("draft").Parse(`Write the news article described by this plan. Use clear, neutral news prose, 250-400 words, with every target vocabulary word used naturally at least once. Do not add headings or commentary; return only the article text.

Plan:
{{.Plan}}

Story summary:
{{.Summary}}

Target vocabulary:
{{.Words}}
`))

// convertPromptTmpl asks for the draft rewritten into difficulty levels.
var convertPromptTmpl = template.Must(template.New("convert").Parse(`Rewrite the article below into {{.Levels}} difficulty levels for language learners. Level 1 is the simplest (short sentences, common words); level {{.Levels}} stays closest to the original. Every level tells the same story and uses the target vocabulary where the level's difficulty allows. Separate paragraphs with a blank line.

Respond with a JSON object only:
{"title": "...", "levels": [{"level": 1, "title": "...", "content": "..."}, ...]}

Target vocabulary:
{{.Words}}

Article:
{{.Draft}}
`))

func renderSelectionPrompt(req SelectionRequest) (string, error) {
	var news []string
	for _, n := range req.News {
		line := fmt.Sprintf("- %s (%s", n.Title, n.Source)
		if !n.Published.IsZero() {
			line += ", " + n.Published.Format("2006-01-02")
		}
		line += ")"
		if n.Summary != "" {
			line += ": " + n.Summary
		}
		if n.Link != "" {
			line += " [" + n.Link + "]"
		}
		news = append(news, line)
	}
	data := struct {
		Topic string
		Date  string
		Words string
		News  string
	}{
		Topic: req.Topic,
		Date:  req.Date.Format("2006-01-02"),
		Words: strings.Join(req.CandidateWords, ", "),
		News:  strings.Join(news, "\n"),
	}
	return render(selectionPromptTmpl, data)
}

func renderPlanPrompt(req PlanRequest) (string, error) {
	data := struct {
		Topic   string
		Summary string
		Words   string
	}{
		Topic:   req.Topic,
		Summary: req.Summary,
		Words:   strings.Join(req.Words, ", "),
	}
	return render(planPromptTmpl, data)
}

func renderDraftPrompt(req DraftRequest) (string, error) {
	data := struct {
		Plan    string
		Summary string
		Words   string
	}{
		Plan:    req.Plan,
		Summary: req.Summary,
		Words:   strings.Join(req.Words, ", "),
	}
	return render(draftPromptTmpl, data)
}

func renderConvertPrompt(req ConvertRequest) (string, error) {
	data := struct {
		Levels int
		Words  string
		Draft  string
	}{
		Levels: req.Levels,
		Words:  strings.Join(req.Words, ", "),
		Draft:  req.Draft,
	}
	return render(convertPromptTmpl, data)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
