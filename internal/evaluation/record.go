package evaluation

import (
	"fmt"

	"github.com/spigell/resume-evaluator/internal/document"
)

// Record is the fixed-shape result of one evaluation. Every field except the
// document reference is optional: a nil pointer or nil slice means absent.
// matched_skills and missing_skills may be present but empty.
type Record struct {
	DocumentReference document.Reference `json:"document_reference"`
	Name              *string            `json:"name"`
	Email             *string            `json:"email"`
	PhoneNumber       *string            `json:"phone_number"`
	Languages         []string           `json:"languages"`
	RoleInferred      *string            `json:"role_inferred"`
	MatchedSkills     []string           `json:"matched_skills"`
	MissingSkills     []string           `json:"missing_skills"`
	SkillsScore       *float64           `json:"skills_score"`
}

// HasPersonalInfo reports whether any of name, email, phone or languages is present.
func (r Record) HasPersonalInfo() bool {
	return r.Name != nil || r.Email != nil || r.PhoneNumber != nil || r.Languages != nil
}

// Fields returns the names of the optional fields that are present, in record order.
func (r Record) Fields() []string {
	var fields []string
	add := func(name string, present bool) {
		if present {
			fields = append(fields, name)
		}
	}
	add("name", r.Name != nil)
	add("email", r.Email != nil)
	add("phone_number", r.PhoneNumber != nil)
	add("languages", r.Languages != nil)
	add("role_inferred", r.RoleInferred != nil)
	add("matched_skills", r.MatchedSkills != nil)
	add("missing_skills", r.MissingSkills != nil)
	add("skills_score", r.SkillsScore != nil)
	return fields
}

// Clone returns a deep copy so stages can read a snapshot without sharing storage.
func (r Record) Clone() Record {
	out := r
	out.Name = clonePtr(r.Name)
	out.Email = clonePtr(r.Email)
	out.PhoneNumber = clonePtr(r.PhoneNumber)
	out.RoleInferred = clonePtr(r.RoleInferred)
	out.SkillsScore = clonePtr(r.SkillsScore)
	out.Languages = cloneSlice(r.Languages)
	out.MatchedSkills = cloneSlice(r.MatchedSkills)
	out.MissingSkills = cloneSlice(r.MissingSkills)
	return out
}

// Merge folds the fields present in patch into r. A field that is already
// present is never overwritten: the first conflict aborts the merge with
// ErrFieldOverwrite and leaves r untouched.
func (r *Record) Merge(patch Record) error {
	if patch.DocumentReference != "" && patch.DocumentReference != r.DocumentReference {
		return fmt.Errorf("%w: document_reference", ErrFieldOverwrite)
	}

	next := *r
	if err := setOnce(&next.Name, patch.Name, "name"); err != nil {
		return err
	}
	if err := setOnce(&next.Email, patch.Email, "email"); err != nil {
		return err
	}
	if err := setOnce(&next.PhoneNumber, patch.PhoneNumber, "phone_number"); err != nil {
		return err
	}
	if err := setOnce(&next.RoleInferred, patch.RoleInferred, "role_inferred"); err != nil {
		return err
	}
	if err := setOnce(&next.SkillsScore, patch.SkillsScore, "skills_score"); err != nil {
		return err
	}
	if err := setListOnce(&next.Languages, patch.Languages, "languages"); err != nil {
		return err
	}
	if err := setListOnce(&next.MatchedSkills, patch.MatchedSkills, "matched_skills"); err != nil {
		return err
	}
	if err := setListOnce(&next.MissingSkills, patch.MissingSkills, "missing_skills"); err != nil {
		return err
	}

	*r = next
	return nil
}

func setOnce[T any](dst **T, value *T, field string) error {
	if value == nil {
		return nil
	}
	if *dst != nil {
		return fmt.Errorf("%w: %s", ErrFieldOverwrite, field)
	}
	*dst = clonePtr(value)
	return nil
}

func setListOnce(dst *[]string, value []string, field string) error {
	if value == nil {
		return nil
	}
	if *dst != nil {
		return fmt.Errorf("%w: %s", ErrFieldOverwrite, field)
	}
	*dst = cloneSlice(value)
	return nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSlice(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
