package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/John-Robertt/terbatch/internal/config"
	"github.com/John-Robertt/terbatch/internal/domain"
	"github.com/John-Robertt/terbatch/internal/lang"
	"github.com/John-Robertt/terbatch/internal/normalize"
	"github.com/John-Robertt/terbatch/internal/report"
	"github.com/John-Robertt/terbatch/internal/scan"
	"github.com/John-Robertt/terbatch/internal/score"
	"github.com/John-Robertt/terbatch/internal/sheet"
)

var (
	// ErrNoDirectory 表示没有可用的输入目录（未指定，或不是可读目录）。
	ErrNoDirectory = errors.New("no directory selected")
	// ErrNoSpreadsheets 表示输入目录下没有 .xlsx 文件。
	ErrNoSpreadsheets = errors.New("no Excel files found in the selected directory")
	// ErrNoColumns 表示执行前未确定机器翻译列/参考列。
	ErrNoColumns = errors.New("machine translation and reference columns must be set")
)

// Scorer 计算一个文件的语料级 TER。*score.Computer 实现了它。
type Scorer interface {
	Compute(hyps, refs []string, family domain.Family) (float64, error)
}

var _ Scorer = (*score.Computer)(nil)

// Deps 是一次 run 的外部协作者。
type Deps struct {
	Scorer Scorer
	Log    zerolog.Logger
}

// Discover 校验目录并列出待处理的电子表格（批处理开始前的致命检查）。
func Discover(dir string) ([]domain.SheetFile, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrNoDirectory
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDirectory, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", ErrNoDirectory, dir)
	}
	files, err := scan.Sheets(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDirectory, err)
	}
	if len(files) == 0 {
		return nil, ErrNoSpreadsheets
	}
	return files, nil
}

// Execute 处理 eff.Path 下的全部 .xlsx 文件并写出 ter_scores.txt。
func Execute(ctx context.Context, eff config.EffectiveConfig, deps Deps) (domain.RunReport, error) {
	return ExecuteWithObserver(ctx, eff, deps, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度信息。
//
// 返回的 error 只表示致命情况（目录/文件发现失败、报告写入失败、被取消）；
// 单个文件的失败一律降级为错误记录。被取消时已处理文件的报告仍会写出。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, deps Deps, obs Observer) (domain.RunReport, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	if deps.Scorer == nil {
		deps.Scorer = score.Default(deps.Log)
	}

	rr := domain.RunReport{
		Dir:       eff.Path,
		MTColumn:  eff.MTColumn,
		RefColumn: eff.RefColumn,
		StartedAt: time.Now().UTC(),
		Records:   []domain.ScoreRecord{},
	}

	files, err := Discover(eff.Path)
	if err != nil {
		return rr, err
	}
	if eff.MTColumn == "" || eff.RefColumn == "" {
		return rr, ErrNoColumns
	}

	obs.OnStart(eff, files)
	p := processor{eff: eff, scorer: deps.Scorer, log: deps.Log, clean: normalize.Cleaner{StripMarkup: eff.StripMarkup}}

	var runErr error
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			deps.Log.Warn().Err(err).Int("remaining", len(files)-i).Msg("run interrupted")
			runErr = err
			break
		}

		code := lang.CodeFromFilename(f.Name)
		family := lang.Detect(code)
		obs.OnFileStart(i+1, len(files), f, code, family)

		started := time.Now()
		rec := p.file(f, code, family)
		rr.Records = append(rr.Records, rec)
		obs.OnFileDone(i+1, len(files), rec, time.Since(started))
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()

	if err := report.Write(eff.Path, rr); err != nil {
		obs.OnDone(rr, "")
		return rr, errors.Join(runErr, fmt.Errorf("write report: %w", err))
	}
	obs.OnDone(rr, filepath.Join(eff.Path, report.FileName))
	return rr, runErr
}

type processor struct {
	eff    config.EffectiveConfig
	scorer Scorer
	log    zerolog.Logger
	clean  normalize.Cleaner
}

// file 把一个文件推进到 Recorded 状态。任何 panic 都降级为 UNKNOWN 语系的错误记录。
func (p processor) file(f domain.SheetFile, code domain.LanguageCode, family domain.Family) (rec domain.ScoreRecord) {
	log := p.log.With().Str("file", f.Name).Str("code", string(code)).Str("family", family.String()).Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("unexpected panic while processing file")
			rec = unexpected(f, code, fmt.Errorf("%v", r))
		}
	}()

	// Loaded
	tbl, err := sheet.Read(f.AbsPath)
	if err != nil {
		log.Error().Err(err).Msg("read spreadsheet failed")
		return unexpected(f, code, err)
	}

	// Validated
	if missing := missingColumns(tbl, p.eff.MTColumn, p.eff.RefColumn); len(missing) > 0 {
		msg := "Missing columns " + strings.Join(missing, ", ")
		log.Warn().Strs("available", tbl.Headers).Msg(msg)
		return failed(f, code, family, domain.ErrCodeMissingColumns, msg)
	}
	mtCol, _ := tbl.Column(p.eff.MTColumn)
	refCol, _ := tbl.Column(p.eff.RefColumn)

	// Normalized + Filtered
	hyps, refs := pairs(mtCol, refCol, func(s string) string { return p.clean.Clean(s, family) })
	if len(hyps) == 0 {
		log.Warn().Msg("no valid text pairs")
		return failed(f, code, family, domain.ErrCodeNoValidText, "No valid text data")
	}
	log.Debug().Int("pairs", len(hyps)).Msg("computing TER")

	// Scored
	s, scoreErr := p.scorer.Compute(hyps, refs, family)
	if scoreErr != nil {
		rec = failed(f, code, family, domain.ErrCodeTERFailed, score.ErrComputationFailed.Error())
	} else {
		rec = domain.ScoreRecord{
			Filename: f.Name,
			Code:     code,
			Family:   family,
			Status:   domain.StatusScored,
			Score:    s,
		}
	}
	rec.Pairs = len(hyps)

	// 调试文件与打分结果无关；写入失败只记日志。
	if p.eff.DebugFiles {
		if err := report.WriteDebug(p.eff.Path, code, hyps, refs); err != nil {
			log.Warn().Err(err).Msg("write debug files failed")
		}
	}
	return rec
}

// missingColumns 按“机器翻译列在前”的顺序返回缺失列（带单引号）。
func missingColumns(tbl *sheet.Table, mt, ref string) []string {
	var out []string
	for _, c := range []string{mt, ref} {
		if !tbl.Has(c) {
			out = append(out, "'"+c+"'")
		}
	}
	return out
}

// pairs 逐行清洗两列，丢弃任一侧为空的行，保持行序。
func pairs(mt, ref []string, clean func(string) string) (hyps, refs []string) {
	for i := range mt {
		h := clean(mt[i])
		r := clean(ref[i])
		if strings.TrimSpace(h) == "" || strings.TrimSpace(r) == "" {
			continue
		}
		hyps = append(hyps, h)
		refs = append(refs, r)
	}
	return hyps, refs
}

func failed(f domain.SheetFile, code domain.LanguageCode, family domain.Family, errCode, msg string) domain.ScoreRecord {
	return domain.ScoreRecord{
		Filename:  f.Name,
		Code:      code,
		Family:    family,
		Status:    domain.StatusFailed,
		ErrorCode: errCode,
		ErrorMsg:  msg,
	}
}

func unexpected(f domain.SheetFile, code domain.LanguageCode, err error) domain.ScoreRecord {
	return failed(f, code, domain.FamilyUnknown, domain.ErrCodeUnexpected, err.Error())
}
