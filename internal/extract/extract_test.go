package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/resume-evaluator/internal/document"
)

func content(text string) *document.Content {
	return &document.Content{Reference: "resume.txt", Format: "text", Text: text}
}

const janeDoe = "Jane Doe, jane@x.com, +1-555-0100, fluent in English and Spanish\nSkills: Python, SQL"

func TestScenarioFields(t *testing.T) {
	c := content(janeDoe)

	name, ok := Name(c)
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe", name)

	email, ok := Email(c)
	assert.True(t, ok)
	assert.Equal(t, "jane@x.com", email)

	phone, ok := Phone(c)
	assert.True(t, ok)
	assert.Equal(t, "+1-555-0100", phone)

	assert.Equal(t, []string{"English", "Spanish"}, Languages(c))
}

func TestName(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		expect string
		found  bool
	}{
		{name: "labelled", text: "Curriculum Vitae\nName: María-José O'Neil\n", expect: "María-José O'Neil", found: true},
		{name: "markdown heading", text: "# John Ronald Smith\nBackend Engineer", expect: "John Ronald Smith", found: true},
		{name: "pipe separated", text: "Alex Kim | Senior Engineer | alex@kim.dev", expect: "Alex Kim", found: true},
		{name: "heading only", text: "Curriculum Vitae\nProfessional Summary\nBuilt things", found: false},
		{name: "lowercase", text: "jane doe\njane@x.com", found: false},
		{name: "too many words", text: "Jane Anne Marie Louise Doe", found: false},
		{name: "digits", text: "Room 101 Building", found: false},
		{name: "empty", text: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Name(content(tt.text))
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestEmail(t *testing.T) {
	got, ok := Email(content("Contact: first.last+cv@mail.example.co.uk."))
	assert.True(t, ok)
	assert.Equal(t, "first.last+cv@mail.example.co.uk", got)

	_, ok = Email(content("no address here, just @handles"))
	assert.False(t, ok)

	_, ok = Email(nil)
	assert.False(t, ok)
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		expect string
		found  bool
	}{
		{name: "labelled wins", text: "Worked 2015-2019 at 1234 567 890\nPhone: (415) 555-2671", expect: "(415) 555-2671", found: true},
		{name: "international", text: "Call +44 20 7946 0958 anytime", expect: "+44 20 7946 0958", found: true},
		{name: "year range skipped", text: "Acme Corp 2018-2021\nGlobex 2021 - 2023", found: false},
		{name: "too short", text: "Room 12-34", found: false},
		{name: "iso dates skipped", text: "Jane Doe\nData Analyst, Acme (2019-09-01 to 2021-06-30)", found: false},
		{name: "dotted date skipped", text: "Jane Doe\nGraduated 15.06.2020", found: false},
		{name: "labelled date skipped", text: "Phone: 2021.06.30", found: false},
		{name: "short unlabelled number skipped", text: "Order 555 0100 shipped", found: false},
		{name: "short labelled number kept", text: "Tel: 555 0100 ext", expect: "555 0100", found: true},
		{name: "long unlabelled number", text: "Reach me at 415 555 2671", expect: "415 555 2671", found: true},
		{name: "none", text: "Jane Doe", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Phone(content(tt.text))
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestLanguages(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		expect []string
	}{
		{name: "dedup keeps first order", text: "Spanish (native)\nEnglish, SPANISH and English", expect: []string{"Spanish", "English"}},
		{name: "label line is case-insensitive", text: "Languages: german, french (B2)", expect: []string{"German", "French"}},
		{name: "lowercase prose ignored", text: "I polish the UI and speak english", expect: nil},
		{name: "none", text: "Python, SQL", expect: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Languages(content(tt.text)))
		})
	}
}

func TestLanguagesNoDuplicates(t *testing.T) {
	got := Languages(content("English English ENGLISH\nLanguages: english, Russian\nRussian"))
	assert.Equal(t, []string{"English", "Russian"}, got)
}
