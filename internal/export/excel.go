// Package export 把排名结果导出为 Excel 工作簿
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"resume-match-go/internal/types"
)

const (
	SummarySheet = "Summary"
	RankedSheet  = "Ranked Candidates"
)

// RankedHeaders 排名表的列
var RankedHeaders = []string{
	"Rank", "Name", "Email", "Phone", "Match Score", "Total Experience",
	"Matched Skills", "Common Keywords", "Education", "Experience", "Profile ID",
}

// NewWorkbook 生成包含汇总页和排名页的工作簿，调用方负责 Close
func NewWorkbook(job *types.JobDescription, results []types.RankedResult, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(RankedSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, job, results, generatedAt); err != nil {
		f.Close()
		return nil, fmt.Errorf("生成汇总页失败: %w", err)
	}
	if err := writeRanked(f, results); err != nil {
		f.Close()
		return nil, fmt.Errorf("生成排名页失败: %w", err)
	}
	return f, nil
}

// Write 把工作簿写到 w
func Write(w io.Writer, job *types.JobDescription, results []types.RankedResult, generatedAt time.Time) error {
	f, err := NewWorkbook(job, results, generatedAt)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveAs 保存到文件，缺少扩展名时补上 .xlsx
func SaveAs(path string, job *types.JobDescription, results []types.RankedResult, generatedAt time.Time) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)
	f, err := NewWorkbook(job, results, generatedAt)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return path, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeSummary(f *excelize.File, job *types.JobDescription, results []types.RankedResult, generatedAt time.Time) error {
	sheet := SummarySheet
	if err := f.SetColWidth(sheet, "A", "A", 25); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 60); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A1", "Candidate Ranking Report"); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return err
	}

	var title, description string
	if job != nil {
		title, description = job.Title, job.Description
	}
	rows := [][2]interface{}{
		{"Job Title:", title},
		{"Job Description:", description},
		{"Generated:", generatedAt.Format("2006-01-02 15:04:05")},
		{"Candidates Ranked:", len(results)},
	}
	if len(results) > 0 {
		var total float64
		for _, r := range results {
			total += r.MatchScore
		}
		rows = append(rows,
			[2]interface{}{"Highest Score:", results[0].MatchScore},
			[2]interface{}{"Average Score:", fmt.Sprintf("%.2f", total/float64(len(results)))},
		)
	}

	row := 3
	for _, kv := range rows {
		if err := f.SetCellValue(sheet, cell(1, row), kv[0]); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(1, row), cell(1, row), labelStyle); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell(2, row), kv[1]); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeRanked(f *excelize.File, results []types.RankedResult) error {
	sheet := RankedSheet
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	for i, h := range RankedHeaders {
		if err := f.SetCellValue(sheet, cell(i+1, 1), h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, cell(1, 1), cell(len(RankedHeaders), 1), headerStyle); err != nil {
		return err
	}

	for i, r := range results {
		p := r.CandidateProfile
		if p == nil {
			p = &types.CandidateProfile{}
		}
		ex := r.Explainability
		values := []interface{}{
			i + 1,
			p.Name,
			p.Email,
			p.Phone,
			r.MatchScore,
			ex.TotalExperience,
			strings.Join(ex.MatchedSkills, ", "),
			strings.Join(ex.CommonKeywords, ", "),
			ex.Education,
			ex.Experience,
			p.ID,
		}
		for col, v := range values {
			if err := f.SetCellValue(sheet, cell(col+1, i+2), v); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(sheet, "B", "D", 24); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "G", "J", 40)
}
