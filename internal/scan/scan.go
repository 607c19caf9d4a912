package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/terbatch/internal/domain"
)

// lockPrefix 是 Office 打开工作簿时生成的锁文件前缀。
const lockPrefix = "~$"

// Sheets 列出 dir 下（不递归）的 .xlsx 文件。
//
// 规则：
// - 扩展名大小写不敏感
// - 跳过目录、非普通文件与 Office 锁文件（~$ 开头）
// - 按文件名排序输出
func Sheets(dir string) ([]domain.SheetFile, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]domain.SheetFile, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, lockPrefix) {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".xlsx" {
			continue
		}

		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		files = append(files, domain.SheetFile{
			AbsPath: filepath.Join(dir, name),
			Name:    name,
			Base:    strings.TrimSuffix(name, filepath.Ext(name)),
			Ext:     ext,
			Size:    info.Size(),
			ModUnix: info.ModTime().Unix(),
		})
	}

	// 强制稳定输出，避免不同平台/文件系统行为差异带来的不确定性。
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
