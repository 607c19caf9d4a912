// Package sheet 把 .xlsx 的第一张工作表读成“表头 + 文本行”。
package sheet

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheet 表示工作簿里没有任何工作表。
var ErrNoSheet = errors.New("workbook has no worksheet")

// Table 是一张工作表：首行为表头，其余为数据行（所有单元格都是文本）。
type Table struct {
	Headers []string
	Rows    [][]string

	index map[string]int
}

// Read 读取 path 的第一张工作表。
func Read(path string) (*Table, error) {
	return read(path, -1)
}

// Sample 只保留前 n 行数据，用于列选择时展示样例。
func Sample(path string, n int) (*Table, error) {
	if n < 0 {
		n = 0
	}
	return read(path, n)
}

// Headers 返回表头（已按 Unnamed/重复规则命名）。
func Headers(path string) ([]string, error) {
	t, err := read(path, 0)
	if err != nil {
		return nil, err
	}
	return t.Headers, nil
}

func read(path string, limit int) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return build(rows, limit), nil
}

// build 把原始行转换为 Table；limit < 0 表示不限制数据行数。
func build(rows [][]string, limit int) *Table {
	rows = trimTrailingEmpty(rows)

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	var header []string
	var data [][]string
	if len(rows) > 0 {
		header, data = rows[0], rows[1:]
	}
	if limit >= 0 && len(data) > limit {
		data = data[:limit]
	}

	t := &Table{Headers: headerNames(header, width), Rows: make([][]string, 0, len(data))}
	for _, r := range data {
		row := make([]string, width)
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	t.index = make(map[string]int, width)
	for i, h := range t.Headers {
		t.index[h] = i
	}
	return t
}

// headerNames 命名规则：空表头为 "Unnamed: <列号从 0 起>"；重名依次追加 ".1"、".2"。
func headerNames(raw []string, width int) []string {
	out := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(raw) {
			name = raw[i]
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for n := seen[base]; seen[name] > 0; n++ {
			name = base + "." + strconv.Itoa(n)
		}
		if name != base {
			seen[base]++
		}
		seen[name]++
		out[i] = name
	}
	return out
}

func trimTrailingEmpty(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && emptyRow(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func emptyRow(r []string) bool {
	for _, c := range r {
		if c != "" {
			return false
		}
	}
	return true
}

// Has 报告是否存在名为 name 的列。
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column 返回列的所有值（缺失单元格为 ""）。
func (t *Table) Column(name string) ([]string, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, true
}
