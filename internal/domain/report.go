package domain

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
)

const (
	StatusScored = "scored"
	StatusFailed = "failed"
)

const (
	ErrCodeMissingColumns = "missing_columns"
	ErrCodeNoValidText    = "no_valid_text"
	ErrCodeTERFailed      = "ter_failed"
	ErrCodeUnexpected     = "unexpected"
)

// ScoreRecord 是单个文件的处理结果；追加到 RunReport 之后不再修改。
type ScoreRecord struct {
	Filename string       `json:"filename"`
	Code     LanguageCode `json:"language_code"`
	Family   Family       `json:"language_family"`

	Status    string  `json:"status"`
	Score     float64 `json:"score"`
	Pairs     int     `json:"pairs"`
	ErrorCode string  `json:"error_code"`
	ErrorMsg  string  `json:"error_msg"`
}

func (r ScoreRecord) OK() bool { return r.Status == StatusScored }

// ScoreField 返回报告 TER_Score 列的内容：两位小数，或 "ERROR: <msg>"。
func (r ScoreRecord) ScoreField() string {
	if r.OK() {
		return fmt.Sprintf("%.2f", r.Score)
	}
	return "ERROR: " + r.ErrorMsg
}

// RunReport 汇总一次 run 的全部记录（顺序 = 处理顺序）。
type RunReport struct {
	Dir       string `json:"dir"`
	MTColumn  string `json:"mt_column"`
	RefColumn string `json:"ref_column"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Records []ScoreRecord `json:"records"`
}

type ReportSummary struct {
	Total  int `json:"total"`
	Scored int `json:"scored"`
	Failed int `json:"failed"`

	// 以下统计只覆盖成功记录；Scored==0 时全为 0。
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Finalize 做两件事：
// 1) 时间统一为 UTC
// 2) summary 由 records 计算得出（records 顺序保持不变）
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	s := ReportSummary{Total: len(r.Records)}
	scores := make(stats.Float64Data, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.OK() {
			s.Scored++
			scores = append(scores, rec.Score)
			continue
		}
		s.Failed++
	}
	if len(scores) > 0 {
		s.Mean, _ = stats.Mean(scores)
		s.Median, _ = stats.Median(scores)
		s.Min, _ = stats.Min(scores)
		s.Max, _ = stats.Max(scores)
	}
	r.Summary = s
}
