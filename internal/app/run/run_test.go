package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/John-Robertt/terbatch/internal/config"
	"github.com/John-Robertt/terbatch/internal/domain"
	"github.com/John-Robertt/terbatch/internal/report"
	"github.com/John-Robertt/terbatch/internal/score"
)

func writeSheet(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func effFor(dir string) config.EffectiveConfig {
	return config.EffectiveConfig{Path: dir, MTColumn: "MT", RefColumn: "Reference", DebugFiles: true}
}

func deps() Deps {
	return Deps{Scorer: score.Default(zerolog.Nop()), Log: zerolog.Nop()}
}

type stubScorer struct {
	score float64
	err   error
	panic bool
	calls int
}

func (s *stubScorer) Compute(hyps, refs []string, family domain.Family) (float64, error) {
	s.calls++
	if s.panic {
		panic("scorer exploded")
	}
	return s.score, s.err
}

func TestExecute_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, filepath.Join(dir, "report_en.xlsx"), [][]string{
		{"MT", "Reference"},
		{"the cat sat on the mat", "the cat sat on the mat"},
		{"hello   world", "hello world"},
	})
	writeSheet(t, filepath.Join(dir, "report_zh.xlsx"), [][]string{
		{"MT", "Reference"},
		{"我爱你", "我爱你"},
	})

	rr, err := Execute(context.Background(), effFor(dir), deps())
	require.NoError(t, err)
	require.Len(t, rr.Records, 2)

	assert.Equal(t, "report_en.xlsx", rr.Records[0].Filename)
	assert.Equal(t, domain.LanguageCode("en"), rr.Records[0].Code)
	assert.Equal(t, domain.FamilyDefault, rr.Records[0].Family)
	assert.Equal(t, 0.0, rr.Records[0].Score)
	assert.Equal(t, 2, rr.Records[0].Pairs)
	assert.Equal(t, domain.FamilyChinese, rr.Records[1].Family)
	assert.True(t, rr.Records[1].OK())
	assert.Equal(t, 2, rr.Summary.Scored)

	b, err := os.ReadFile(filepath.Join(dir, report.FileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "# Total Files Processed: 2", lines[3])
	assert.Equal(t, "report_en.xlsx\ten\tdefault\t0.00", lines[5])
	assert.Equal(t, "report_zh.xlsx\tzh\tchinese\t0.00", lines[6])

	mt, ref := report.DebugNames("en")
	got, err := os.ReadFile(filepath.Join(dir, mt))
	require.NoError(t, err)
	assert.Equal(t, "the cat sat on the mat\nhello world\n", string(got))
	assert.FileExists(t, filepath.Join(dir, ref))
}

func TestExecute_MissingColumnDoesNotStopBatch(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, filepath.Join(dir, "a_fr.xlsx"), [][]string{{"MT", "Other"}, {"x", "y"}})
	writeSheet(t, filepath.Join(dir, "b_de.xlsx"), [][]string{{"MT", "Reference"}, {"a b", "a c"}})

	rr, err := Execute(context.Background(), effFor(dir), deps())
	require.NoError(t, err)
	require.Len(t, rr.Records, 2)

	assert.Equal(t, domain.ErrCodeMissingColumns, rr.Records[0].ErrorCode)
	assert.Equal(t, "ERROR: Missing columns 'Reference'", rr.Records[0].ScoreField())
	assert.Equal(t, domain.FamilyDefault, rr.Records[0].Family)
	assert.Equal(t, "50.00", rr.Records[1].ScoreField())
}

func TestExecute_BothColumnsMissing(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, filepath.Join(dir, "a_ru.xlsx"), [][]string{{"Source"}, {"x"}})

	rr, err := Execute(context.Background(), effFor(dir), deps())
	require.NoError(t, err)
	assert.Equal(t, "Missing columns 'MT', 'Reference'", rr.Records[0].ErrorMsg)
	assert.Equal(t, domain.FamilyCyrillic, rr.Records[0].Family)
}

func TestExecute_NoValidTextWritesNoDebugFiles(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, filepath.Join(dir, "blank_th.xlsx"), [][]string{
		{"MT", "Reference"},
		{"   ", "ref only"},
		{"mt only", ""},
	})

	sc := &stubScorer{}
	rr, err := Execute(context.Background(), effFor(dir), Deps{Scorer: sc, Log: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, "ERROR: No valid text data", rr.Records[0].ScoreField())
	assert.Equal(t, domain.FamilyThai, rr.Records[0].Family)
	assert.Zero(t, sc.calls)

	mt, ref := report.DebugNames("th")
	assert.NoFileExists(t, filepath.Join(dir, mt))
	assert.NoFileExists(t, filepath.Join(dir, ref))
}

func TestExecute_ComputationFailureStillWritesDebugFiles(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, filepath.Join(dir, "x_ja.xlsx"), [][]string{{"MT", "Reference"}, {"a", "b"}})

	sc := &stubScorer{err: score.ErrComputationFailed}
	rr, err := Execute(context.Background(), effFor(dir), Deps{Scorer: sc, Log: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, "ERROR: TER computation failed", rr.Records[0].ScoreField())
	assert.Equal(t, domain.FamilyJapanese, rr.Records[0].Family)

	mt, _ := report.DebugNames("ja")
	assert.FileExists(t, filepath.Join(dir, mt))
}

func TestExecute_DebugFilesDisabled(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, filepath.Join(dir, "x_ko.xlsx"), [][]string{{"MT", "Reference"}, {"a", "a"}})

	eff := effFor(dir)
	eff.DebugFiles = false
	_, err := Execute(context.Background(), eff, deps())
	require.NoError(t, err)

	mt, _ := report.DebugNames("ko")
	assert.NoFileExists(t, filepath.Join(dir, mt))
}

func TestExecute_UnexpectedErrorsUseUnknownFamily(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken_zh.xlsx"), []byte("not a zip"), 0o644))
	writeSheet(t, filepath.Join(dir, "ok_vi.xlsx"), [][]string{{"MT", "Reference"}, {"a", "b"}})

	sc := &stubScorer{panic: true}
	rr, err := Execute(context.Background(), effFor(dir), Deps{Scorer: sc, Log: zerolog.Nop()})
	require.NoError(t, err)
	require.Len(t, rr.Records, 2)

	assert.Equal(t, domain.FamilyUnknown, rr.Records[0].Family)
	assert.Equal(t, domain.LanguageCode("zh"), rr.Records[0].Code)
	assert.Equal(t, domain.ErrCodeUnexpected, rr.Records[0].ErrorCode)

	assert.Equal(t, domain.FamilyUnknown, rr.Records[1].Family)
	assert.Equal(t, "scorer exploded", rr.Records[1].ErrorMsg)
}

func TestExecute_MarkupStripping(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, filepath.Join(dir, "m_en.xlsx"), [][]string{{"MT", "Reference"}, {"<b>hello</b> world", "hello world"}})

	eff := effFor(dir)
	eff.StripMarkup = true
	rr, err := Execute(context.Background(), eff, deps())
	require.NoError(t, err)
	assert.Equal(t, 0.0, rr.Records[0].Score)
}

func TestExecute_FatalConditions(t *testing.T) {
	_, err := Execute(context.Background(), config.EffectiveConfig{}, deps())
	assert.ErrorIs(t, err, ErrNoDirectory)

	_, err = Execute(context.Background(), effFor(filepath.Join(t.TempDir(), "missing")), deps())
	assert.ErrorIs(t, err, ErrNoDirectory)

	empty := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(empty, "notes.txt"), []byte("x"), 0o644))
	_, err = Execute(context.Background(), effFor(empty), deps())
	assert.ErrorIs(t, err, ErrNoSpreadsheets)
	assert.NoFileExists(t, filepath.Join(empty, report.FileName))
}

func TestExecute_RequiresColumns(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, filepath.Join(dir, "a_en.xlsx"), [][]string{{"MT", "Reference"}, {"a", "a"}})

	_, err := Execute(context.Background(), config.EffectiveConfig{Path: dir}, deps())
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestExecute_CancelledStillWritesReport(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, filepath.Join(dir, "a_en.xlsx"), [][]string{{"MT", "Reference"}, {"a", "a"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rr, err := Execute(ctx, effFor(dir), deps())
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, rr.Records)
	assert.FileExists(t, filepath.Join(dir, report.FileName))
}

type recordObserver struct {
	started  int
	files    []string
	done     []domain.ScoreRecord
	report   string
	finished bool
}

func (o *recordObserver) OnStart(eff config.EffectiveConfig, files []domain.SheetFile) {
	o.started = len(files)
}

func (o *recordObserver) OnFileStart(idx, total int, f domain.SheetFile, code domain.LanguageCode, family domain.Family) {
	o.files = append(o.files, f.Name)
}

func (o *recordObserver) OnFileDone(idx, total int, rec domain.ScoreRecord, dur time.Duration) {
	o.done = append(o.done, rec)
}

func (o *recordObserver) OnDone(rr domain.RunReport, reportPath string) {
	o.finished = true
	o.report = reportPath
}

func TestExecuteWithObserver_EmitsEvents(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, filepath.Join(dir, "b_en.xlsx"), [][]string{{"MT", "Reference"}, {"a", "a"}})
	writeSheet(t, filepath.Join(dir, "a_zh.xlsx"), [][]string{{"MT", "Reference"}, {"a", "a"}})

	obs := &recordObserver{}
	_, err := ExecuteWithObserver(context.Background(), effFor(dir), deps(), obs)
	require.NoError(t, err)

	assert.Equal(t, 2, obs.started)
	assert.Equal(t, []string{"a_zh.xlsx", "b_en.xlsx"}, obs.files)
	assert.Len(t, obs.done, 2)
	assert.True(t, obs.finished)
	assert.Equal(t, filepath.Join(dir, report.FileName), obs.report)
}
