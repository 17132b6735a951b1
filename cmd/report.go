package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spigell/resume-evaluator/internal/evaluation"
)

const (
	notFound         = "Not Found"
	noPersonalInfo   = "Warning: no personal information could be extracted from this document"
	outputText       = "text"
	outputJSON       = "json"
	emptySkillsLabel = "None"
)

// report is the machine-readable form of an evaluation result.
type report struct {
	ID      string             `json:"id"`
	State   evaluation.State   `json:"state"`
	History []evaluation.State `json:"history"`
	Error   string             `json:"error,omitempty"`
	Record  evaluation.Record  `json:"record"`
}

func newReport(res evaluation.Result) report {
	r := report{
		ID:      res.ID,
		State:   res.State,
		History: res.History,
		Record:  res.Record,
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	return r
}

func render(w io.Writer, format string, res evaluation.Result) error {
	switch format {
	case outputJSON:
		return renderJSON(w, res)
	case outputText, "":
		return renderText(w, res)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func renderJSON(w io.Writer, res evaluation.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newReport(res))
}

func renderText(w io.Writer, res evaluation.Result) error {
	rec := res.Record
	var b strings.Builder

	fmt.Fprintf(&b, "Document: %s\n", rec.DocumentReference)
	fmt.Fprintf(&b, "Evaluation: %s (%s)\n", res.ID, res.State)
	if res.Err != nil {
		fmt.Fprintf(&b, "Error: %v\n", res.Err)
	}

	b.WriteString("\nPersonal Information\n")
	if rec.HasPersonalInfo() {
		fmt.Fprintf(&b, "  Name: %s\n", orNotFound(rec.Name))
		fmt.Fprintf(&b, "  Email: %s\n", orNotFound(rec.Email))
		fmt.Fprintf(&b, "  Phone Number: %s\n", orNotFound(rec.PhoneNumber))
		fmt.Fprintf(&b, "  Languages: %s\n", joinList(rec.Languages))
	} else {
		fmt.Fprintf(&b, "  %s\n", noPersonalInfo)
	}

	b.WriteString("\nRole Assessment\n")
	fmt.Fprintf(&b, "  Inferred Role: %s\n", orNotFound(rec.RoleInferred))
	fmt.Fprintf(&b, "  Skills Score: %s\n", formatScore(rec.SkillsScore))
	fmt.Fprintf(&b, "  Matched Skills: %s\n", joinList(rec.MatchedSkills))
	fmt.Fprintf(&b, "  Missing Skills: %s\n", joinList(rec.MissingSkills))

	dump, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	fmt.Fprintf(&b, "\nRecord\n%s\n", dump)

	_, err = io.WriteString(w, b.String())
	return err
}

func orNotFound(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return notFound
	}
	return *value
}

// joinList renders absent lists as Not Found and present empty ones as None.
func joinList(items []string) string {
	if items == nil {
		return notFound
	}
	if len(items) == 0 {
		return emptySkillsLabel
	}
	return strings.Join(items, ", ")
}

func formatScore(score *float64) string {
	if score == nil {
		return notFound
	}
	return fmt.Sprintf("%.1f%%", *score*100)
}
