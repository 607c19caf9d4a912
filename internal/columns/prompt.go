package columns

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	sampleWidth = 50
	sampleRows  = 3
	rule        = "============================================================"
)

// ErrInputClosed 表示交互过程中输入流提前结束。
var ErrInputClosed = errors.New("input closed before column selection finished")

// Prompt 在 out 上列出列及样例值，从 in 逐行读取回答，直到得到有效选择。
//
// rows 为样例数据行（按列对齐），只使用前几行。
func Prompt(in io.Reader, out io.Writer, source string, headers []string, rows [][]string) (Result, error) {
	if len(headers) == 0 {
		return Result{}, ErrNoColumns
	}
	sc := bufio.NewScanner(in)
	ask := func(q string) (string, error) {
		fmt.Fprint(out, q)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", ErrInputClosed
		}
		return strings.TrimSpace(sc.Text()), nil
	}

	fmt.Fprintf(out, "\nAvailable columns in '%s':\n%s\n", source, rule)
	for i, h := range headers {
		fmt.Fprintf(out, "%2d. %s\n", i+1, h)
		if s, ok := SampleValue(rows, i); ok {
			fmt.Fprintf(out, "    Sample: %s\n", s)
		}
		fmt.Fprintln(out)
	}

	mtSug, refSug := Suggest(headers)

	var mt int
	for {
		a, err := ask(question("\nSelect MACHINE TRANSLATION column number", mtSug))
		if err != nil {
			return Result{}, err
		}
		i, err := Choose(headers, a, mtSug)
		if err != nil {
			fmt.Fprintln(out, sentence(err))
			continue
		}
		mt = i
		fmt.Fprintf(out, "Selected MT column: '%s'\n", headers[mt])
		break
	}

	var ref int
	for {
		a, err := ask(question("\nSelect REFERENCE (Human) TRANSLATION column number", refSug))
		if err != nil {
			return Result{}, err
		}
		i, err := Choose(headers, a, refSug)
		if err == nil && i == mt {
			err = ErrSameColumn
		}
		if err != nil {
			fmt.Fprintln(out, sentence(err))
			continue
		}
		ref = i
		fmt.Fprintf(out, "Selected Reference column: '%s'\n", headers[ref])
		break
	}

	fmt.Fprintf(out, "\n%s\nCOLUMN SELECTION SUMMARY:\n", rule)
	fmt.Fprintf(out, "Machine Translation: '%s'\n", headers[mt])
	fmt.Fprintf(out, "Reference Translation: '%s'\n%s\n", headers[ref], rule)

	confirm, err := ask("\nIs this correct? (y/n, default=y): ")
	if err != nil {
		return Result{}, err
	}
	if Cancels(confirm) {
		fmt.Fprintln(out, "Column selection cancelled.")
		return Result{Cancelled: true}, nil
	}
	return Result{MT: headers[mt], Ref: headers[ref]}, nil
}

// SampleValue 返回列 col 在前几行中的第一个非空值（去首尾空白，过宽时截断并追加 "..."）。
func SampleValue(rows [][]string, col int) (string, bool) {
	for r := 0; r < len(rows) && r < sampleRows; r++ {
		if col >= len(rows[r]) {
			continue
		}
		v := strings.TrimSpace(rows[r][col])
		if v == "" {
			continue
		}
		if runewidth.StringWidth(v) > sampleWidth {
			v = runewidth.Truncate(v, sampleWidth, "") + "..."
		}
		return v, true
	}
	return "", false
}

func question(q string, suggested []int) string {
	if len(suggested) > 0 {
		nums := make([]string, len(suggested))
		for i, s := range suggested {
			nums[i] = strconv.Itoa(s + 1)
		}
		q += " (suggested: " + strings.Join(nums, ", ") + ")"
	}
	return q + ": "
}

func sentence(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
