package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Bands(t *testing.T) {
	tests := []struct {
		score float64
		want  Grade
	}{
		{100.0, GradeAPlus},
		{95.0, GradeAPlus},
		{94.999, GradeA},
		{90.0, GradeA},
		{89.5, GradeAMinus},
		{85.0, GradeAMinus},
		{84.0, GradeBPlus},
		{80.0, GradeBPlus},
		{79.9, GradeB},
		{75.0, GradeB},
		{70.0, GradeBMinus},
		{69.999, GradeCPlus},
		{65.0, GradeCPlus},
		{60.0, GradeC},
		{59.0, GradeCMinus},
		{55.0, GradeCMinus},
		{50.0, GradeD},
		{49.999, GradeF},
		{0.0, GradeF},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %.3f", tt.score)
	}
}

func TestClassify_BandsAreContiguous(t *testing.T) {
	// Walk the whole range in small steps: every score classifies to
	// exactly one valid grade, and grades never improve as scores drop.
	prev := Classify(100.0)
	for score := 100.0; score >= 0; score -= 0.25 {
		g := Classify(score)
		assert.True(t, g.IsValid(), "score %.2f produced invalid grade %q", score, g)
		assert.LessOrEqual(t, g.Point(), prev.Point(),
			"grade point increased while score dropped at %.2f", score)
		prev = g
	}
}

func TestGradePoints(t *testing.T) {
	tests := []struct {
		grade Grade
		want  float64
	}{
		{GradeAPlus, 4.0},
		{GradeA, 4.0},
		{GradeAMinus, 3.7},
		{GradeBPlus, 3.3},
		{GradeB, 3.0},
		{GradeBMinus, 2.7},
		{GradeCPlus, 2.3},
		{GradeC, 2.0},
		{GradeCMinus, 1.7},
		{GradeD, 1.0},
		{GradeF, 0.0},
		{Grade("X"), 0.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.grade.Point(), "grade %s", tt.grade)
	}
}

func TestIsPassing(t *testing.T) {
	for _, g := range All() {
		if g == GradeF {
			assert.False(t, g.IsPassing())
		} else {
			assert.True(t, g.IsPassing(), "grade %s", g)
		}
	}
	assert.False(t, Grade("bogus").IsPassing())
}

func TestDescriptions(t *testing.T) {
	assert.Equal(t, "Excellent (95-100%)", GradeAPlus.Description())
	assert.Equal(t, "Poor (50-54%)", GradeD.Description())
	assert.Equal(t, "Fail (Below 50%)", GradeF.Description())
	assert.Equal(t, "Unknown Grade", Grade("Z").Description())

	// Every defined grade has a real description.
	for _, g := range All() {
		assert.NotEqual(t, "Unknown Grade", g.Description(), "grade %s", g)
	}
}

func TestAll(t *testing.T) {
	grades := All()
	assert.Len(t, grades, 11)
	assert.Equal(t, GradeAPlus, grades[0])
	assert.Equal(t, GradeF, grades[len(grades)-1])
}
