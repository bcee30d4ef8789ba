// Package render turns an analysis into something a person reads: the web
// page and the CLI report are both built from Report.
package render

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/sozercan/poetry-assistant/apimodels"
	"github.com/sozercan/poetry-assistant/internal/client"
)

var digitsRe = regexp.MustCompile(`[0-9]+`)

// RatingNumber extracts the first run of decimal digits in s, e.g. 8 from
// "8/10 - strong imagery". It is 0 when s holds no digits.
func RatingNumber(s string) int {
	m := digitsRe.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

type Rating struct {
	Score int
	Text  string
}

func NewRating(text string) Rating {
	return Rating{Score: RatingNumber(text), Text: text}
}

// Percent is the progress bar fill, clamped to 0..100.
func (r Rating) Percent() int {
	p := r.Score * 10
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

type Criterion struct {
	Name string
	Rating
}

type Report struct {
	Overall      Rating
	Strengths    []string
	Weaknesses   []string
	Technical    []Criterion
	Improvements []string
	FinalVerdict string
}

func NewReport(res apimodels.AnalysisResult) Report {
	ta := res.TechnicalAnalysis
	return Report{
		Overall:    NewRating(res.OverallRating),
		Strengths:  orEmpty(res.Strengths),
		Weaknesses: orEmpty(res.Weaknesses),
		Technical: []Criterion{
			{Name: "Rhythm", Rating: NewRating(ta.Rhythm)},
			{Name: "Word Choice", Rating: NewRating(ta.WordChoice)},
			{Name: "Imagery", Rating: NewRating(ta.Imagery)},
			{Name: "Structure", Rating: NewRating(ta.Structure)},
		},
		Improvements: orEmpty(res.Improvements),
		FinalVerdict: res.FinalVerdict,
	}
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// Alert is the user-facing form of a failed submission. It never carries
// the raw model output.
type Alert struct {
	Message string
	Details string
}

const (
	genericMessage    = "An error occurred while analyzing the poem."
	noAnalysisMessage = "No analysis data received from the server."
)

func AlertFromPayload(p apimodels.ErrorPayload) Alert {
	msg := p.Error
	if msg == "" {
		msg = genericMessage
	}
	return Alert{Message: msg, Details: p.Details}
}

func AlertFromError(err error) Alert {
	if err == nil {
		return Alert{Message: genericMessage}
	}
	a := Alert{Message: err.Error()}
	if errors.Is(err, client.ErrNoAnalysis) {
		a.Message = noAnalysisMessage
	}
	var d interface{ Detail() string }
	if errors.As(err, &d) {
		a.Details = d.Detail()
	}
	return a
}
