package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"resume-match-go/internal/types"
)

func TestTenureMonths(t *testing.T) {
	calc := NewTenureCalculator(fixedClock(2024))
	tests := []struct {
		years string
		want  int
	}{
		{"2018-2019", 24},
		{"2020", 12},
		{"2019 - Present", 72},
		{"Jan 2022 – current", 36},
		{"2020 - 2018", 0},
		{"", 0},
		{"last summer", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calc.Months(tt.years), tt.years)
	}
}

func TestTenureTotal(t *testing.T) {
	calc := NewTenureCalculator(fixedClock(2024))

	assert.Equal(t, 3.0, calc.Total([]types.ExperienceRecord{{Years: "2018-2019"}, {Years: "2020"}}))
	assert.Equal(t, 0.0, calc.Total([]types.ExperienceRecord{{Years: "recently"}, {Title: "Engineer"}}))
	assert.Equal(t, 0.0, calc.Total(nil))
}
