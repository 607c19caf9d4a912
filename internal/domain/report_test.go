package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestRunReport_Finalize_SummaryAndUTC(t *testing.T) {
	r := RunReport{
		Dir:        "/abs/path",
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Records: []ScoreRecord{
			{Filename: "b_zh.xlsx", Status: StatusScored, Score: 30},
			{Filename: "a_en.xlsx", Status: StatusFailed, ErrorMsg: "No valid text data"},
			{Filename: "c_ja.xlsx", Status: StatusScored, Score: 10},
			{Filename: "d_ko.xlsx", Status: StatusScored, Score: 20},
		},
	}

	r.Finalize()

	// records 顺序必须保持处理顺序，不排序。
	if r.Records[0].Filename != "b_zh.xlsx" || r.Records[1].Filename != "a_en.xlsx" {
		t.Fatalf("records 顺序被改变：%+v", r.Records)
	}
	if r.Summary.Total != 4 || r.Summary.Scored != 3 || r.Summary.Failed != 1 {
		t.Fatalf("summary 计数不正确：%+v", r.Summary)
	}
	if r.Summary.Mean != 20 || r.Summary.Median != 20 || r.Summary.Min != 10 || r.Summary.Max != 30 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestRunReport_Finalize_NoScores(t *testing.T) {
	r := RunReport{Records: []ScoreRecord{{Status: StatusFailed, ErrorMsg: "x"}}}
	r.Finalize()
	if r.Summary.Scored != 0 || r.Summary.Mean != 0 || r.Summary.Max != 0 {
		t.Fatalf("无成功记录时统计应为 0：%+v", r.Summary)
	}
}

func TestScoreRecord_ScoreField(t *testing.T) {
	ok := ScoreRecord{Status: StatusScored, Score: 12.3}
	if got := ok.ScoreField(); got != "12.30" {
		t.Fatalf("期望两位小数，实际 %q", got)
	}
	zero := ScoreRecord{Status: StatusScored, Score: 0}
	if got := zero.ScoreField(); got != "0.00" {
		t.Fatalf("期望 0.00，实际 %q", got)
	}
	bad := ScoreRecord{Status: StatusFailed, ErrorMsg: "TER computation failed"}
	if got := bad.ScoreField(); got != "ERROR: TER computation failed" {
		t.Fatalf("错误记录格式不对：%q", got)
	}
}

func TestFamily_CharBased(t *testing.T) {
	for _, f := range []Family{FamilyChinese, FamilyJapanese, FamilyKorean, FamilyThai, FamilyVietnamese, FamilyAsianCharBased} {
		if !f.CharBased() {
			t.Fatalf("%s 应属于字符级语言族", f)
		}
	}
	for _, f := range []Family{FamilyArabic, FamilyCyrillic, FamilyDefault, FamilyUnknown} {
		if f.CharBased() {
			t.Fatalf("%s 不应属于字符级语言族", f)
		}
	}
}
