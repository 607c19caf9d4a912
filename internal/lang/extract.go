package lang

import (
	"path/filepath"
	"strings"

	"github.com/John-Robertt/terbatch/internal/domain"
)

// CodeFromFilename 从文件名中提取语言代码：去掉扩展名后，取最后一个 '_' 之后的部分。
//
// 例：report_zh-cn.xlsx => "zh-cn"；glossary.xlsx => "unknown"。
// 注意：不做大小写规范化（报告里需要原样输出）；分类时再统一小写。
func CodeFromFilename(name string) domain.LanguageCode {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	i := strings.LastIndex(base, "_")
	if i < 0 {
		return domain.UnknownCode
	}
	return domain.LanguageCode(base[i+1:])
}
