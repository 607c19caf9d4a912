// Package report 写出目录级 TER 报告 ter_scores.txt 与逐文件的调试文本。
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/terbatch/internal/domain"
	"github.com/John-Robertt/terbatch/internal/infra/fsx"
)

// FileName 是报告文件名（写在输入目录下）。
const FileName = "ter_scores.txt"

// Format 渲染报告文本。
//
// 布局：列头一行，三行 "# " 注释（列名与文件数），一行分隔线，然后每个文件一行（Tab 分隔）。
func Format(r domain.RunReport) []byte {
	var b strings.Builder
	b.WriteString("Filename\tLanguage_Code\tLanguage_Family\tTER_Score\n")
	fmt.Fprintf(&b, "# Machine Translation Column: %s\n", r.MTColumn)
	fmt.Fprintf(&b, "# Reference Translation Column: %s\n", r.RefColumn)
	fmt.Fprintf(&b, "# Total Files Processed: %d\n", len(r.Records))
	b.WriteString("# " + strings.Repeat("=", 50) + "\n")
	for _, rec := range r.Records {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\n", rec.Filename, rec.Code, rec.Family, oneLine(rec.ScoreField()))
	}
	return []byte(b.String())
}

// Write 把报告写到 dir/ter_scores.txt（覆盖旧报告）。
func Write(dir string, r domain.RunReport) error {
	return fsx.WriteFile(filepath.Join(dir, FileName), Format(r))
}

// DebugNames 返回某语言代码对应的两个调试文件名（机器翻译、参考译文）。
func DebugNames(code domain.LanguageCode) (mt, ref string) {
	return "MachineTranslation_" + string(code) + ".txt", "Reference_" + string(code) + ".txt"
}

// WriteDebug 把过滤后的句对写成两个文本文件（每行一句）。
func WriteDebug(dir string, code domain.LanguageCode, hyps, refs []string) error {
	mt, ref := DebugNames(code)
	if err := fsx.WriteLines(filepath.Join(dir, mt), hyps); err != nil {
		return fmt.Errorf("write %s: %w", mt, err)
	}
	if err := fsx.WriteLines(filepath.Join(dir, ref), refs); err != nil {
		return fmt.Errorf("write %s: %w", ref, err)
	}
	return nil
}

// oneLine 保证一条记录只占一行（错误信息里可能带换行或 Tab）。
func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
}
