package evaluation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/resume-evaluator/internal/ai"
	"github.com/spigell/resume-evaluator/internal/document"
	"github.com/spigell/resume-evaluator/internal/extract"
	"github.com/spigell/resume-evaluator/internal/skills"
)

// Stage names of the built-in pipeline.
const (
	StageName      = "name"
	StageEmail     = "email"
	StagePhone     = "phone_number"
	StageLanguages = "languages"
	StageRole      = "role"
	StageSkills    = "skills"
)

type scalarStage struct {
	toggle
	name    string
	extract extract.Scalar
	assign  func(r *Record, value string)
}

// NewScalarStage wraps a single-value extractor. assign stores the found value in the patch.
func NewScalarStage(name string, fn extract.Scalar, assign func(r *Record, value string)) Stage {
	return &scalarStage{name: name, extract: fn, assign: assign}
}

func (s *scalarStage) Name() string { return s.name }

func (s *scalarStage) Phase() Phase { return PhaseExtract }

func (s *scalarStage) Apply(_ context.Context, content *document.Content, _ Record) (Record, error) {
	var patch Record
	if value, ok := s.extract(content); ok {
		s.assign(&patch, value)
	}
	return patch, nil
}

func (s *scalarStage) Status() Status {
	return Status{Name: s.name, Phase: s.Phase().String(), Enabled: s.IsEnabled(), Reason: s.reason}
}

type languagesStage struct {
	toggle
	extract extract.List
}

func NewLanguagesStage() Stage {
	return &languagesStage{extract: extract.Languages}
}

func (s *languagesStage) Name() string { return StageLanguages }

func (s *languagesStage) Phase() Phase { return PhaseExtract }

func (s *languagesStage) Apply(_ context.Context, content *document.Content, _ Record) (Record, error) {
	var patch Record
	if langs := s.extract(content); len(langs) > 0 {
		patch.Languages = langs
	}
	return patch, nil
}

func (s *languagesStage) Status() Status {
	return Status{Name: StageLanguages, Phase: s.Phase().String(), Enabled: s.IsEnabled(), Reason: s.reason}
}

type roleStage struct {
	toggle
	inferrer ai.RoleInferrer
	provider string
}

// NewRoleStage infers the candidate's role with the given inferrer. provider
// names the inferrer in status output.
func NewRoleStage(inferrer ai.RoleInferrer, provider string) Stage {
	return &roleStage{inferrer: inferrer, provider: provider}
}

func (s *roleStage) Name() string { return StageRole }

func (s *roleStage) Phase() Phase { return PhaseExtract }

func (s *roleStage) Apply(ctx context.Context, content *document.Content, _ Record) (Record, error) {
	var patch Record
	if s.inferrer == nil {
		return patch, errors.New("role inferrer is not configured")
	}

	guess, err := s.inferrer.InferRole(ctx, content)
	if err != nil {
		return patch, fmt.Errorf("infer role: %w", err)
	}
	if guess == nil {
		return patch, nil
	}

	if role := strings.TrimSpace(guess.Role); role != "" {
		patch.RoleInferred = &role
	}
	return patch, nil
}

func (s *roleStage) Status() Status {
	return Status{
		Name:    StageRole,
		Phase:   s.Phase().String(),
		Enabled: s.IsEnabled(),
		Reason:  s.reason,
		Details: map[string]string{"provider": s.provider},
	}
}

type skillsStage struct {
	toggle
	matcher *skills.Matcher
}

// NewSkillsStage scores skill fit against the role found by the extract phase.
// An absent role still produces empty skill lists and a zero score.
func NewSkillsStage(matcher *skills.Matcher) Stage {
	if matcher == nil {
		matcher = skills.NewMatcher(nil)
	}
	return &skillsStage{matcher: matcher}
}

func (s *skillsStage) Name() string { return StageSkills }

func (s *skillsStage) Phase() Phase { return PhaseScore }

func (s *skillsStage) Apply(_ context.Context, content *document.Content, snapshot Record) (Record, error) {
	role := ""
	if snapshot.RoleInferred != nil {
		role = *snapshot.RoleInferred
	}

	match := s.matcher.Match(content, role)
	if match.Score < 0 || match.Score > 1 {
		return Record{}, fmt.Errorf("skills score %v out of range", match.Score)
	}

	score := match.Score
	return Record{
		MatchedSkills: match.Matched,
		MissingSkills: match.Missing,
		SkillsScore:   &score,
	}, nil
}

func (s *skillsStage) Status() Status {
	return Status{
		Name:    StageSkills,
		Phase:   s.Phase().String(),
		Enabled: s.IsEnabled(),
		Reason:  s.reason,
		Details: map[string]string{"roles": strconv.Itoa(len(s.matcher.Catalog().Roles()))},
	}
}

// DefaultStages returns the standard pipeline: personal field extractors and
// role inference, followed by skill matching.
func DefaultStages(inferrer ai.RoleInferrer, provider string, matcher *skills.Matcher) []Stage {
	return []Stage{
		NewScalarStage(StageName, extract.Name, func(r *Record, v string) { r.Name = &v }),
		NewScalarStage(StageEmail, extract.Email, func(r *Record, v string) { r.Email = &v }),
		NewScalarStage(StagePhone, extract.Phone, func(r *Record, v string) { r.PhoneNumber = &v }),
		NewLanguagesStage(),
		NewRoleStage(inferrer, provider),
		NewSkillsStage(matcher),
	}
}
