package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/terbatch/internal/app/run"
	"github.com/John-Robertt/terbatch/internal/columns"
	"github.com/John-Robertt/terbatch/internal/config"
	"github.com/John-Robertt/terbatch/internal/domain"
	"github.com/John-Robertt/terbatch/internal/score"
	"github.com/John-Robertt/terbatch/internal/sheet"
)

const banner = "Enhanced Multi-Language TER Evaluation"

func newRunCmd(ctx context.Context, s streams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Score every .xlsx file in dir and write ter_scores.txt",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				return &usageError{err: fmt.Errorf("重复的 dir：%q 与 %q", args[0], args[1])}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runE(ctx, cmd, args, s)
		},
	}
	f := cmd.Flags()
	f.String("mt-column", "", "machine translation column name")
	f.String("ref-column", "", "reference translation column name")
	f.BoolP("yes", "y", false, "accept suggested columns without prompting")
	f.Bool("strip-markup", false, "remove HTML/XML tags before scoring")
	f.Bool("no-debug-files", false, "do not write MachineTranslation_<code>.txt / Reference_<code>.txt")
	return cmd
}

func cliArgs(cmd *cobra.Command, args []string) (config.CLIArgs, error) {
	f := cmd.Flags()
	var a config.CLIArgs
	if len(args) == 1 {
		a.Path = args[0]
	}
	var err error
	if a.MTColumn, err = f.GetString("mt-column"); err != nil {
		return a, err
	}
	if a.RefColumn, err = f.GetString("ref-column"); err != nil {
		return a, err
	}
	if a.LogLevel, err = cmd.Root().PersistentFlags().GetString("log-level"); err != nil {
		return a, err
	}
	if a.Yes, err = f.GetBool("yes"); err != nil {
		return a, err
	}
	a.YesSet = f.Changed("yes")
	if a.StripMarkup, err = f.GetBool("strip-markup"); err != nil {
		return a, err
	}
	a.StripMarkupSet = f.Changed("strip-markup")
	noDebug, err := f.GetBool("no-debug-files")
	if err != nil {
		return a, err
	}
	a.DebugFiles = !noDebug
	a.DebugFilesSet = f.Changed("no-debug-files")
	return a, nil
}

func runE(ctx context.Context, cmd *cobra.Command, args []string, s streams) error {
	cli, err := cliArgs(cmd, args)
	if err != nil {
		return &usageError{err: err}
	}
	// 目录询问与列选择共用同一个缓冲读取器，避免前者多读走后者的输入。
	s.in = bufio.NewReader(s.in)
	progressW, interactive := pickProgressWriter(s)
	colorOn, err := useColor(cmd, interactive)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fail(1, "读取当前目录失败：%v", err)
	}
	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		return fail(1, "%v", err)
	}

	ui := newProgressUI(progressW, colorOn)
	if interactive {
		ui.banner(banner)
	}

	// 无目录：交互终端上询问一次。
	if eff.Path == "" && s.inTTY {
		dir, err := askLine(s.in, progressW, "Folder with Excel files: ")
		if err != nil && !errors.Is(err, io.EOF) {
			return fail(1, "读取输入失败：%v", err)
		}
		if dir != "" {
			cli.Path = dir
			if eff, err = config.LoadEffective(cwd, cli); err != nil {
				return fail(1, "%v", err)
			}
		}
	}
	log := newLogger(s.err, eff.LogLevel, colorOn)

	files, err := run.Discover(eff.Path)
	switch {
	case errors.Is(err, run.ErrNoDirectory) && eff.Path == "":
		return fail(1, "No directory selected. Exiting.")
	case errors.Is(err, run.ErrNoSpreadsheets):
		return fail(1, "No Excel files found in the selected directory.")
	case err != nil:
		return fail(1, "%v", err)
	}
	ui.line("Found %d Excel file(s)", len(files))

	if !eff.Columns() {
		sel, err := selectColumns(s, progressW, eff, files[0])
		if err != nil {
			return err
		}
		eff.MTColumn, eff.RefColumn = sel.MT, sel.Ref
	}

	var obs run.Observer
	if interactive {
		obs = ui
	}
	deps := run.Deps{Scorer: score.Default(log), Log: log}
	rr, runErr := run.ExecuteWithObserver(ctx, eff, deps, obs)

	emitErr := emitReport(s, rr)
	if runErr != nil {
		return fail(1, "%v", runErr)
	}
	if emitErr != nil {
		return fail(1, "输出 RunReport 失败：%v", emitErr)
	}
	if rr.Summary.Failed > 0 {
		return fail(1, "")
	}
	return nil
}

// selectColumns 以第一个文件为样本确定两列：--yes 时直接采用建议/给定值，否则交互询问。
func selectColumns(s streams, w io.Writer, eff config.EffectiveConfig, sample domain.SheetFile) (columns.Result, error) {
	tbl, err := sheet.Sample(sample.AbsPath, 3)
	if err != nil {
		return columns.Result{}, fail(1, "Error reading sample file: %v", err)
	}

	if eff.Yes {
		res, err := columns.Resolve(tbl.Headers, columns.Answers{MT: eff.MTColumn, Ref: eff.RefColumn})
		if err != nil {
			return columns.Result{}, fail(1, "无法自动选择列：%v", err)
		}
		return res, nil
	}
	if !s.inTTY {
		return columns.Result{}, fail(2, "非交互模式需要 --mt-column 与 --ref-column（或 --yes 采用建议列）")
	}

	fmt.Fprintf(w, "Using '%s' as sample for column selection...\n", sample.Name)
	res, err := columns.Prompt(s.in, w, sample.Name, tbl.Headers, tbl.Rows)
	if err != nil {
		return columns.Result{}, fail(1, "列选择失败：%v", err)
	}
	if res.Cancelled {
		return columns.Result{}, fail(1, "Column selection cancelled. Exiting.")
	}
	return res, nil
}

func askLine(in io.Reader, w io.Writer, q string) (string, error) {
	fmt.Fprint(w, q)
	line, err := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line), err
}

// emitReport 输出结果：终端上是摘要行，否则 stdout 是一个 RunReport JSON。
func emitReport(s streams, rr domain.RunReport) error {
	summary := fmt.Sprintf("完成：total=%d scored=%d failed=%d", rr.Summary.Total, rr.Summary.Scored, rr.Summary.Failed)
	if s.outTTY {
		fmt.Fprintln(s.out, summary)
		for _, rec := range rr.Records {
			if rec.OK() {
				continue
			}
			fmt.Fprintf(s.err, "%s %s: %s\n", rec.Filename, rec.ErrorCode, rec.ErrorMsg)
		}
		return nil
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	fmt.Fprintln(s.err, summary)
	return json.NewEncoder(s.out).Encode(rr)
}

func pickProgressWriter(s streams) (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if s.errTTY {
		return s.err, true
	}
	if s.outTTY {
		return s.out, true
	}
	return io.Discard, false
}
