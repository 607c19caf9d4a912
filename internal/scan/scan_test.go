package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSheets_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()

	touch(t, filepath.Join(dir, "report_zh.xlsx"))
	touch(t, filepath.Join(dir, "report_en.xlsx"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "old.xls"))
	touch(t, filepath.Join(dir, "~$report_en.xlsx"))
	// 不递归。
	touch(t, filepath.Join(dir, "sub", "report_fr.xlsx"))

	got, err := Sheets(dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 个文件，实际 %d", len(got))
	}
	if got[0].Name != "report_en.xlsx" || got[1].Name != "report_zh.xlsx" {
		t.Fatalf("排序不符合预期：%q, %q", got[0].Name, got[1].Name)
	}
	if got[0].Base != "report_en" {
		t.Fatalf("期望 base=report_en，实际=%q", got[0].Base)
	}
	if got[0].AbsPath != filepath.Join(dir, "report_en.xlsx") {
		t.Fatalf("AbsPath 不符合预期：%q", got[0].AbsPath)
	}
}

func TestSheets_ExtCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "X_de.XLSX"))

	got, err := Sheets(dir)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("期望 1 个文件，实际 %d", len(got))
	}
	if got[0].Ext != ".xlsx" {
		t.Fatalf("期望 ext=.xlsx，实际=%q", got[0].Ext)
	}
}

func TestSheets_MissingDirectory(t *testing.T) {
	if _, err := Sheets(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("期望错误")
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
