package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-evaluator/internal/document"
	"github.com/spigell/resume-evaluator/internal/evaluation"
	"github.com/spigell/resume-evaluator/internal/skills"
)

func ptr[T any](v T) *T { return &v }

func janeDoeResult() evaluation.Result {
	return evaluation.Result{
		ID:      "0b6f3c9e-1111-4c1e-9a55-000000000001",
		State:   evaluation.StateCompleted,
		History: []evaluation.State{evaluation.StateCreated, evaluation.StateCompleted},
		Record: evaluation.Record{
			DocumentReference: "uploads/resume_20240101_120000.pdf",
			Name:              ptr("Jane Doe"),
			Email:             ptr("jane@x.com"),
			PhoneNumber:       ptr("+1-555-0100"),
			Languages:         []string{"English", "Spanish"},
			RoleInferred:      ptr("Data Analyst"),
			MatchedSkills:     []string{"Python", "SQL"},
			MissingSkills:     []string{"Excel"},
			SkillsScore:       ptr(2.0 / 3.0),
		},
	}
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputText, janeDoeResult()))
	out := buf.String()

	for _, want := range []string{
		"Name: Jane Doe\n",
		"Email: jane@x.com\n",
		"Phone Number: +1-555-0100\n",
		"Languages: English, Spanish\n",
		"Inferred Role: Data Analyst\n",
		"Skills Score: 66.7%\n",
		"Matched Skills: Python, SQL\n",
		"Missing Skills: Excel\n",
		`"document_reference": "uploads/resume_20240101_120000.pdf"`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, noPersonalInfo)
	assert.NotContains(t, out, "Error:")
}

func TestRenderTextAbsentFields(t *testing.T) {
	res := evaluation.Result{
		ID:      "id",
		State:   evaluation.StateFailed,
		Err:     document.ErrNotFound,
		Record:  evaluation.Record{DocumentReference: "missing.pdf"},
		History: []evaluation.State{evaluation.StateCreated, evaluation.StateFailed},
	}

	var buf bytes.Buffer
	require.NoError(t, renderText(&buf, res))
	out := buf.String()

	assert.Contains(t, out, "Personal Information\n  "+noPersonalInfo+"\n")
	assert.NotContains(t, out, "Name: Not Found")
	assert.NotContains(t, out, "Languages: Not Found")
	assert.Contains(t, out, "Skills Score: Not Found\n")
	assert.Contains(t, out, noPersonalInfo)
	assert.Contains(t, out, "Error: document not found")
	assert.Contains(t, out, `"name": null`)
}

func TestRenderTextPartialPersonalInfo(t *testing.T) {
	res := evaluation.Result{Record: evaluation.Record{
		DocumentReference: "a.pdf",
		Email:             ptr("jane@x.com"),
	}}

	var buf bytes.Buffer
	require.NoError(t, renderText(&buf, res))
	out := buf.String()

	assert.Contains(t, out, "Name: Not Found\n")
	assert.Contains(t, out, "Email: jane@x.com\n")
	assert.Contains(t, out, "Languages: Not Found\n")
	assert.NotContains(t, out, noPersonalInfo)
}

func TestRenderTextEmptySkillLists(t *testing.T) {
	res := evaluation.Result{Record: evaluation.Record{
		DocumentReference: "a.pdf",
		MatchedSkills:     []string{},
		MissingSkills:     []string{},
		SkillsScore:       ptr(0.0),
	}}

	var buf bytes.Buffer
	require.NoError(t, renderText(&buf, res))

	assert.Contains(t, buf.String(), "Matched Skills: None\n")
	assert.Contains(t, buf.String(), "Skills Score: 0.0%\n")
}

func TestRenderJSON(t *testing.T) {
	res := janeDoeResult()
	res.State = evaluation.StateFailed
	res.Err = errors.New("stage skills: boom")

	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputJSON, res))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "failed", decoded["state"])
	assert.Equal(t, "stage skills: boom", decoded["error"])
	assert.Equal(t, []any{"created", "completed"}, decoded["history"])

	record := decoded["record"].(map[string]any)
	assert.Equal(t, "Jane Doe", record["name"])
	assert.InDelta(t, 0.667, record["skills_score"], 0.001)
}

func TestRenderUnknownFormat(t *testing.T) {
	assert.Error(t, render(&bytes.Buffer{}, "xml", janeDoeResult()))
}

func TestStageFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "My CV.PDF")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.7"), 0o600))
	dir := filepath.Join(t.TempDir(), "uploads")
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	first, err := stageFile(src, dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "resume_20240309_140507.pdf"), first.String())

	data, err := os.ReadFile(first.String())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))

	second, err := stageFile(src, dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "resume_20240309_140507_1.pdf"), second.String())

	names, err := listStaged(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"resume_20240309_140507_1.pdf", "resume_20240309_140507.pdf"}, names)
}

func TestStageFileMissingSource(t *testing.T) {
	_, err := stageFile(filepath.Join(t.TempDir(), "nope.pdf"), t.TempDir(), time.Now())
	assert.ErrorIs(t, err, document.ErrNotFound)
}

func TestWriteStagedRemovesPartialFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	src := io.MultiReader(strings.NewReader("%PDF-1.7\n"), iotest.ErrReader(errors.New("disk went away")))

	_, err := writeStaged(src, dir, ".pdf", time.Now())
	require.ErrorContains(t, err, "disk went away")

	names, err := listStaged(dir)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListStagedMissingDir(t *testing.T) {
	names, err := listStaged(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			UploadsDir: "uploads",
			Evaluation: &EvaluationConfig{Timeout: time.Minute},
			Role:       &RoleConfig{Provider: "keyword", MinimumConfidence: 0.3},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Role.Provider = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Role.MinimumConfidence = 1.5
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.UploadsDir = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Evaluation = nil
	assert.Error(t, cfg.Validate())
}

func TestPrintStages(t *testing.T) {
	stages := evaluation.DefaultStages(nil, "keyword", nil)
	evaluation.DisableByName(stages, evaluation.StageEmail, "privacy")

	var buf bytes.Buffer
	require.NoError(t, printStages(&buf, evaluation.Describe(stages)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(stages)+1)
	assert.Contains(t, lines[2], "false")
	assert.Contains(t, lines[2], "reason=privacy")
	assert.Contains(t, lines[5], "provider=keyword")
}

func TestPrintRoles(t *testing.T) {
	catalog, err := skills.ParseCatalog([]byte("roles:\n  - name: Data Analyst\n    keywords: [analytics]\n    skills: [Python, SQL, Excel]\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	printRoles(&buf, catalog)
	assert.Equal(t, "Data Analyst\n  skills: Python, SQL, Excel\n  keywords: analytics\n", buf.String())
}
