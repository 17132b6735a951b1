package evaluation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRecordMergeNeverOverwrites(t *testing.T) {
	rec := Record{DocumentReference: "a.pdf"}

	require.NoError(t, rec.Merge(Record{Name: strPtr("Jane Doe")}))
	require.NoError(t, rec.Merge(Record{Email: strPtr("jane@x.com"), Languages: []string{"English"}}))

	err := rec.Merge(Record{Email: strPtr("other@x.com"), RoleInferred: strPtr("Data Analyst")})
	require.ErrorIs(t, err, ErrFieldOverwrite)
	assert.ErrorContains(t, err, "email")

	// a rejected patch leaves the record untouched
	assert.Nil(t, rec.RoleInferred)
	assert.Equal(t, "jane@x.com", *rec.Email)

	require.ErrorIs(t, rec.Merge(Record{Languages: []string{}}), ErrFieldOverwrite)
	require.ErrorIs(t, rec.Merge(Record{DocumentReference: "b.pdf"}), ErrFieldOverwrite)
	require.NoError(t, rec.Merge(Record{DocumentReference: "a.pdf"}))
}

func TestRecordMergeKeepsEmptyLists(t *testing.T) {
	rec := Record{DocumentReference: "a.pdf"}
	require.NoError(t, rec.Merge(Record{MatchedSkills: []string{}, MissingSkills: []string{}}))

	assert.NotNil(t, rec.MatchedSkills)
	assert.NotNil(t, rec.MissingSkills)
	assert.Equal(t, []string{"matched_skills", "missing_skills"}, rec.Fields())
}

func TestRecordCloneIsDeep(t *testing.T) {
	rec := Record{Name: strPtr("Jane Doe"), Languages: []string{"English"}}
	clone := rec.Clone()

	*clone.Name = "John Roe"
	clone.Languages[0] = "Spanish"

	assert.Equal(t, "Jane Doe", *rec.Name)
	assert.Equal(t, []string{"English"}, rec.Languages)
}

func TestRecordJSONMarksAbsentFieldsNull(t *testing.T) {
	score := 0.5
	rec := Record{
		DocumentReference: "uploads/resume.pdf",
		Email:             strPtr("jane@x.com"),
		MatchedSkills:     []string{},
		SkillsScore:       &score,
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"document_reference": "uploads/resume.pdf",
		"name": null,
		"email": "jane@x.com",
		"phone_number": null,
		"languages": null,
		"role_inferred": null,
		"matched_skills": [],
		"missing_skills": null,
		"skills_score": 0.5
	}`, string(data))
}

func TestRecordHasPersonalInfo(t *testing.T) {
	assert.False(t, Record{RoleInferred: strPtr("x")}.HasPersonalInfo())
	assert.True(t, Record{Languages: []string{"English"}}.HasPersonalInfo())
	assert.True(t, Record{PhoneNumber: strPtr("+1")}.HasPersonalInfo())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "role_inferred", StateRoleInferred.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateScored.Terminal())

	data, err := json.Marshal([]State{StateCreated, StateCompleted})
	require.NoError(t, err)
	assert.JSONEq(t, `["created","completed"]`, string(data))
}
