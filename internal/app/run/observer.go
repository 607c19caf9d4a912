package run

import (
	"time"

	"github.com/John-Robertt/terbatch/internal/config"
	"github.com/John-Robertt/terbatch/internal/domain"
)

// Observer 用于把“运行进度/逐文件结果”从核心执行流程中解耦出来。
//
// 约束：run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// 事件全部来自调用 ExecuteWithObserver 的 goroutine。
type Observer interface {
	// OnStart 在发现文件之后、处理第一个文件之前调用。
	OnStart(eff config.EffectiveConfig, files []domain.SheetFile)
	// OnFileStart 在开始处理某个文件时调用（语言代码与语系已推导）。
	OnFileStart(idx, total int, f domain.SheetFile, code domain.LanguageCode, family domain.Family)
	// OnFileDone 在某个文件的记录追加后调用。
	OnFileDone(idx, total int, rec domain.ScoreRecord, dur time.Duration)
	// OnDone 在报告写出后调用；reportPath 为空表示报告写入失败。
	OnDone(rr domain.RunReport, reportPath string)
}

type nopObserver struct{}

func (nopObserver) OnStart(config.EffectiveConfig, []domain.SheetFile) {}
func (nopObserver) OnFileStart(int, int, domain.SheetFile, domain.LanguageCode, domain.Family) {
}
func (nopObserver) OnFileDone(int, int, domain.ScoreRecord, time.Duration) {}
func (nopObserver) OnDone(domain.RunReport, string)                        {}
