package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// streams 是 CLI 的输入输出；测试时替换为内存缓冲。
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer

	inTTY  bool
	outTTY bool
	errTTY bool
}

func osStreams() streams {
	return streams{
		in:     os.Stdin,
		out:    os.Stdout,
		err:    os.Stderr,
		inTTY:  isTerminal(os.Stdin),
		outTTY: isTerminal(os.Stdout),
		errTTY: isTerminal(os.Stderr),
	}
}

// exitError 携带进程退出码；msg 非空时由 execute 打印到 stderr。
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func fail(code int, format string, args ...any) error {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...)}
}

// usageError 表示参数错误（退出码 2）。
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], osStreams())
	stop()
	os.Exit(code)
}

// execute 运行命令并返回退出码：0 全部成功，1 存在失败记录或致命错误，2 参数错误。
func execute(ctx context.Context, args []string, s streams) int {
	root := newRootCmd(ctx, s)
	root.SetArgs(args)
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.err)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintln(s.err, ee.msg)
		}
		return ee.code
	}
	// 其余错误来自 cobra 自身（未知命令/参数/flag），统一视为用法错误。
	fmt.Fprintf(s.err, "参数错误：%v\n\n", err)
	cmd, _, findErr := root.Find(args)
	if findErr != nil || cmd == nil {
		cmd = root
	}
	fmt.Fprint(s.err, cmd.UsageString())
	return 2
}

func newRootCmd(ctx context.Context, s streams) *cobra.Command {
	root := &cobra.Command{
		Use:           "terbatch",
		Short:         "Batch TER evaluation of machine translations stored in .xlsx files",
		Long:          "terbatch computes Translation Edit Rate for every .xlsx file in a folder and writes ter_scores.txt.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error); default warn")

	root.AddCommand(newRunCmd(ctx, s))
	root.AddCommand(newProbeCmd(s))
	return root
}

// useColor 按 --color 决定是否着色；auto 时仅在终端上着色。
func useColor(cmd *cobra.Command, tty bool) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return tty, nil
	default:
		return false, &usageError{err: fmt.Errorf("--color 只能是 auto、on 或 off，实际是 %q", mode)}
	}
}

func newLogger(w io.Writer, level zerolog.Level, color bool) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: w, NoColor: !color, TimeFormat: "15:04:05"}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

// isTerminal 判断文件是否为终端。
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
