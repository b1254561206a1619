// Package grading contains the grade classification model: the threshold
// ladder mapping percentage scores to letter grades, grade descriptions,
// 4.0-scale grade points and the passing predicate. Pure business logic,
// no external dependencies.
package grading

// Grade is a letter classification derived from a percentage score.
type Grade string

const (
	GradeAPlus  Grade = "A+"
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeCMinus Grade = "C-"
	GradeD      Grade = "D"
	GradeF      Grade = "F"
)

// band is one rung of the grading ladder.
type band struct {
	threshold float64 // lower bound, inclusive
	grade     Grade
}

// ladder is evaluated highest-to-lowest; first match wins. Bands are
// contiguous and non-overlapping over [0, 100].
var ladder = []band{
	{95.0, GradeAPlus},
	{90.0, GradeA},
	{85.0, GradeAMinus},
	{80.0, GradeBPlus},
	{75.0, GradeB},
	{70.0, GradeBMinus},
	{65.0, GradeCPlus},
	{60.0, GradeC},
	{55.0, GradeCMinus},
	{50.0, GradeD},
}

// Classify maps a percentage score to a letter grade.
// Scores are expected in [0, 100]; range validation is the caller's
// responsibility, out-of-range input still classifies deterministically.
func Classify(score float64) Grade {
	for _, b := range ladder {
		if score >= b.threshold {
			return b.grade
		}
	}
	return GradeF
}

// IsValid reports whether g is one of the defined letter grades.
func (g Grade) IsValid() bool {
	switch g {
	case GradeAPlus, GradeA, GradeAMinus, GradeBPlus, GradeB, GradeBMinus,
		GradeCPlus, GradeC, GradeCMinus, GradeD, GradeF:
		return true
	default:
		return false
	}
}

// Point returns the 4.0-scale grade point for GPA calculations.
// Unknown grades map to 0.0.
func (g Grade) Point() float64 {
	switch g {
	case GradeAPlus, GradeA:
		return 4.0
	case GradeAMinus:
		return 3.7
	case GradeBPlus:
		return 3.3
	case GradeB:
		return 3.0
	case GradeBMinus:
		return 2.7
	case GradeCPlus:
		return 2.3
	case GradeC:
		return 2.0
	case GradeCMinus:
		return 1.7
	case GradeD:
		return 1.0
	default:
		return 0.0
	}
}

// IsPassing reports whether the grade is a passing grade.
func (g Grade) IsPassing() bool {
	return g.IsValid() && g != GradeF
}

// Description returns the descriptive text for the grade.
func (g Grade) Description() string {
	switch g {
	case GradeAPlus:
		return "Excellent (95-100%)"
	case GradeA:
		return "Excellent (90-94%)"
	case GradeAMinus:
		return "Very Good (85-89%)"
	case GradeBPlus:
		return "Good (80-84%)"
	case GradeB:
		return "Good (75-79%)"
	case GradeBMinus:
		return "Above Average (70-74%)"
	case GradeCPlus:
		return "Average (65-69%)"
	case GradeC:
		return "Average (60-64%)"
	case GradeCMinus:
		return "Below Average (55-59%)"
	case GradeD:
		return "Poor (50-54%)"
	case GradeF:
		return "Fail (Below 50%)"
	default:
		return "Unknown Grade"
	}
}

// String returns the letter grade.
func (g Grade) String() string {
	return string(g)
}

// All returns every defined grade in ladder order, F last.
// Useful for stable presentation of grade distributions.
func All() []Grade {
	grades := make([]Grade, 0, len(ladder)+1)
	for _, b := range ladder {
		grades = append(grades, b.grade)
	}
	return append(grades, GradeF)
}
