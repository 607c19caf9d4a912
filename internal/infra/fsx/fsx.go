// Package fsx 提供输出文件的落盘工具：报告与调试文本都经同目录临时文件后 rename 替换。
package fsx

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// 测试替换点。
var renameFunc = os.Rename

// NotRegularError 表示输出路径已被目录或其它非普通文件占用。
type NotRegularError struct {
	Path string
	Mode os.FileMode
}

func (e *NotRegularError) Error() string {
	kind := "dir"
	if !e.Mode.IsDir() {
		kind = e.Mode.Type().String()
	}
	return fmt.Sprintf("输出路径 %q 已被占用（%s），不会覆盖", e.Path, kind)
}

func IsNotRegular(err error) bool {
	var e *NotRegularError
	return errors.As(err, &e)
}

// lines 以 "\n" 结尾逐行写出。
type lines []string

func (ls lines) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, l := range ls {
		m, err := bw.WriteString(l)
		n += int64(m)
		if err != nil {
			return n, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// WriteFile 把 data 写到 path，已存在的普通文件被替换。
func WriteFile(path string, data []byte) error {
	return Replace(path, bytes.NewReader(data))
}

// WriteLines 以 UTF-8 写出每行一个元素的文本文件。
func WriteLines(path string, ls []string) error {
	return Replace(path, lines(ls))
}

// Replace 把 src 的内容写到 path：先写同目录的 ".<name>.tmp-*"，fsync 后 rename 到位。
// 失败时不留下临时文件，原文件保持不变。
func Replace(path string, src io.WriterTo) error {
	path = filepath.Clean(path)
	if err := checkTarget(path); err != nil {
		return err
	}
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	done := false
	defer func() {
		if !done {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := src.WriteTo(tmp); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := renameFunc(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		done = true
		return err
	}
	done = true
	syncDir(dir)
	return nil
}

func checkTarget(path string) error {
	fi, err := os.Lstat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return err
	case !fi.Mode().IsRegular():
		return &NotRegularError{Path: path, Mode: fi.Mode()}
	}
	return nil
}

// syncDir 尽力 fsync 目录项；Windows 不支持对目录 fsync。
func syncDir(dir string) {
	if runtime.GOOS == "windows" {
		return
	}
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = f.Sync()
	_ = f.Close()
}
