package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFile_ReplacesExisting(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "ter_scores.txt")

	if err := WriteFile(dst, []byte("old")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := WriteFile(dst, []byte("new")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "new" {
		t.Fatalf("内容不一致：%q", string(b))
	}
	noTemp(t, dst)
}

func TestWriteFile_RenameFailKeepsOld(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "Reference_en.txt")
	if err := os.WriteFile(dst, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("准备文件失败：%v", err)
	}

	old := renameFunc
	renameFunc = func(string, string) error { return os.ErrPermission }
	defer func() { renameFunc = old }()

	if err := WriteLines(dst, []string{"new"}); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}
	b, _ := os.ReadFile(dst)
	if string(b) != "old\n" {
		t.Fatalf("原文件不应被改动：%q", string(b))
	}
	noTemp(t, dst)
}

func TestWriteFile_DirectoryInTheWay(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "ter_scores.txt")
	if err := os.Mkdir(dst, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	err := WriteFile(dst, []byte("x"))
	if !IsNotRegular(err) {
		t.Fatalf("期望 NotRegularError，实际：%T %v", err, err)
	}
	if !strings.Contains(err.Error(), "dir") {
		t.Fatalf("错误信息应说明是目录：%v", err)
	}
}

func TestWriteLines(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "MachineTranslation_zh.txt")
	if err := WriteLines(dst, []string{"你好", "", "世界"}); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "你好\n\n世界\n" {
		t.Fatalf("内容不一致：%q", string(b))
	}

	if err := WriteLines(dst, nil); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if fi, _ := os.Stat(dst); fi.Size() != 0 {
		t.Fatalf("空输入应写出空文件，实际大小 %d", fi.Size())
	}
}

func noTemp(t *testing.T, dst string) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(dst))
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "."+filepath.Base(dst)+".tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}
