package classroom

import (
	"github.com/pkg/errors"

	"github.com/trezcool/lophoc/core"
)

// Assessment kinds
const (
	KindQuality    = "quality"
	KindCompetency = "competency"
)

var ErrUnknownAssessmentKind = errors.New("unknown assessment kind")

// Assessment is either a QualityAssessment or a CompetencyAssessment.
type Assessment interface {
	Kind() string
	Category() string
	// target returns where the assessment is stored: table, category column.
	target() (table, column string)
}

// QualityAssessment rates one of the five character traits (1-5).
type QualityAssessment struct {
	Trait string
}

// CompetencyAssessment rates one of the ten skills.
type CompetencyAssessment struct {
	Skill string
}

func (a QualityAssessment) Kind() string     { return KindQuality }
func (a QualityAssessment) Category() string { return a.Trait }
func (a QualityAssessment) target() (string, string) {
	return core.TableQualityAssessments, "quality_type"
}

func (a CompetencyAssessment) Kind() string     { return KindCompetency }
func (a CompetencyAssessment) Category() string { return a.Skill }
func (a CompetencyAssessment) target() (string, string) {
	return core.TableCompetencyAssessments, "competency_type"
}

// ParseAssessment builds the variant matching kind.
func ParseAssessment(kind, category string) (Assessment, error) {
	switch core.CleanString(kind, true /* lower */) {
	case KindQuality:
		return QualityAssessment{Trait: category}, nil
	case KindCompetency:
		return CompetencyAssessment{Skill: category}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownAssessmentKind, "%q", kind)
	}
}
