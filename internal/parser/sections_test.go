package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"空输入", "", ""},
		{"只有空白", " \t\r\n ", ""},
		{"混合换行和空白", "Line one\r\n\r\n\r\nLine   two\t\tend  \rthree", "Line one\n\nLine two end\nthree"},
		{"不间断空格", "Jane  Doe", "Jane Doe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestExtractEmailAndPhone(t *testing.T) {
	assert.Equal(t, "jane.doe@example.com", ExtractEmail("Contact: jane.doe@example.com."))
	assert.Empty(t, ExtractEmail("no email here @ all"))

	tests := []struct {
		in   string
		want string
	}{
		{"Phone: +1 555-123-4567", "+1 555-123-4567"},
		{"call 555.123.4567 today", "555.123.4567"},
		{"(555) 123 4567", "(555) 123 4567"},
		{"Worked 2018-2019 and 2020 - 2021", ""},
		{"no digits", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractPhone(tt.in), tt.in)
	}
}

func TestMatchSkills(t *testing.T) {
	got := MatchSkills("Python, PYTHON and Machine Learning with Node.js", DefaultSkills)
	assert.Equal(t, []string{"machine learning", "node.js", "python"}, got)
	assert.Empty(t, MatchSkills("", DefaultSkills))
}

func TestSectionLocator(t *testing.T) {
	t.Run("标题独占一行，到下一个标题结束", func(t *testing.T) {
		body, ok := educationLocator.locate("Intro\nEducation:\nMIT\nWork History\nAcme")
		require.True(t, ok)
		assert.Equal(t, "MIT", body)
	})

	t.Run("带限定词的标题", func(t *testing.T) {
		body, ok := experienceLocator.locate("Professional Experience\nDeveloper at Foo Inc\nTechnical Skills\nGo")
		require.True(t, ok)
		assert.Equal(t, "Developer at Foo Inc", body)
	})

	t.Run("最后一个章节延伸到文末", func(t *testing.T) {
		body, ok := experienceLocator.locate("SKILLS\nGo\nEXPERIENCE\nEngineer at Foo Corp\n- shipped things")
		require.True(t, ok)
		assert.Equal(t, "Engineer at Foo Corp\n- shipped things", body)
	})

	t.Run("没有标题", func(t *testing.T) {
		_, ok := educationLocator.locate("Jane Doe\nPython developer")
		assert.False(t, ok)
	})
}

func TestExtractEducation(t *testing.T) {
	t.Run("学位在前", func(t *testing.T) {
		got := ExtractEducation("Master of Business Administration (MBA), Harvard Business School, 2016")
		require.Len(t, got, 1)
		assert.Equal(t, types.EducationRecord{
			Degree:      "Master of Business Administration",
			Institution: "Harvard Business School",
			Year:        "2016",
		}, got[0])
	})

	t.Run("学校在前", func(t *testing.T) {
		got := ExtractEducation("Stanford University - Bachelor of Arts 2010")
		require.Len(t, got, 1)
		assert.Equal(t, types.EducationRecord{Degree: "Bachelor of Arts", Institution: "Stanford University", Year: "2010"}, got[0])
	})

	t.Run("学校和学位分两行时合并", func(t *testing.T) {
		got := ExtractEducation("Harvard University\nMBA, 2016")
		require.Len(t, got, 1)
		assert.Equal(t, types.EducationRecord{Degree: "MBA", Institution: "Harvard University", Year: "2016"}, got[0])
	})

	t.Run("多条记录", func(t *testing.T) {
		got := ExtractEducation("Ph.D. in Physics, Cornell University, 2015 - 2020\nB.S. Physics, Ohio State University, 2011 - 2015")
		require.Len(t, got, 2)
		assert.Equal(t, "Ph.D. in Physics", got[0].Degree)
		assert.Equal(t, "Cornell University", got[0].Institution)
		assert.Equal(t, "2015 - 2020", got[0].Year)
		assert.Equal(t, "B.S. Physics", got[1].Degree)
		assert.Equal(t, "Ohio State University", got[1].Institution)
	})

	t.Run("没有学位也没有学校的条目被丢弃", func(t *testing.T) {
		assert.Empty(t, ExtractEducation("Self-taught through online courses"))
		assert.Empty(t, ExtractEducation(""))
	})
}

func TestExtractExperience(t *testing.T) {
	t.Run("公司和年份在下面两行", func(t *testing.T) {
		got := ExtractExperience("Project Manager\nContoso Group\n2015 - 2017\n\nResponsible for budgets")
		require.Len(t, got, 1)
		assert.Equal(t, types.ExperienceRecord{
			Title:       "Project Manager",
			Company:     "Contoso Group",
			Years:       "2015 - 2017",
			Description: "Responsible for budgets",
		}, got[0])
	})

	t.Run("公司在职位前面", func(t *testing.T) {
		got := ExtractExperience("Initech Systems | Backend Developer | Jan 2019 – Present\n• Wrote Go services")
		require.Len(t, got, 1)
		assert.Equal(t, "Backend Developer", got[0].Title)
		assert.Equal(t, "Initech Systems", got[0].Company)
		assert.Equal(t, "Jan 2019 – Present", got[0].Years)
		assert.Equal(t, "Wrote Go services", got[0].Description)
	})

	t.Run("描述中的连字符保留", func(t *testing.T) {
		got := ExtractExperience("Data Scientist, Umbrella Corp, 2021\n- Built real-time dashboards")
		require.Len(t, got, 1)
		assert.Equal(t, "Built real-time dashboards", got[0].Description)
	})

	t.Run("年份写在职位前面", func(t *testing.T) {
		got := ExtractExperience("2019-2021 Data Engineer, Beta Technologies\n- Built ETL jobs")
		require.Len(t, got, 1)
		assert.Equal(t, types.ExperienceRecord{
			Title:       "Data Engineer",
			Company:     "Beta Technologies",
			Years:       "2019-2021",
			Description: "Built ETL jobs",
		}, got[0])
		assert.Greater(t, NewTenureCalculator(fixedClock(2024)).Total(got), 0.0)
	})

	t.Run("没有职位也没有公司的条目被丢弃", func(t *testing.T) {
		assert.Empty(t, ExtractExperience("Volunteered at the local library"))
	})
}
