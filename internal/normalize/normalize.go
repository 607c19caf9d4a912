// Package normalize 按语言族清洗待评测文本。
//
// 所有函数都是纯函数，且对任意语言族幂等：Clean(Clean(t, f), f) == Clean(t, f)。
package normalize

import (
	"regexp"
	"strings"

	"github.com/John-Robertt/terbatch/internal/domain"
)

var (
	newlineRun = regexp.MustCompile(`\n+`)
	// Go 的 \s 只覆盖 ASCII 空白；这里补上 Unicode 分隔符（如 U+3000、U+00A0）与 NEL。
	spaceRun = regexp.MustCompile(`[\s\p{Z}\x{85}\v]{2,}`)
)

// Clean 按语言族清洗文本。缺失值（空串）返回空串。
//
// - 字符级语言族（thai/vietnamese/asian_char_based）：只把换行合并为空格，
//   再把 2 个及以上的连续空白压成一个空格；单个空白字符原样保留。
// - 其他语言族：所有空白串压成单个空格。
// 两种规则最后都去掉首尾空白。
func Clean(text string, f domain.Family) string {
	if text == "" {
		return ""
	}
	switch f {
	case domain.FamilyThai, domain.FamilyVietnamese, domain.FamilyAsianCharBased:
		return cleanMinimal(text)
	default:
		// chinese/japanese/korean/arabic/cyrillic/default 以及未知标签。
		return collapseAll(text)
	}
}

func collapseAll(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func cleanMinimal(text string) string {
	text = newlineRun.ReplaceAllString(text, " ")
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Cleaner 把可选的预处理（去除内联标记）与 Clean 组合在一起。
// 零值等价于直接调用 Clean。
type Cleaner struct {
	StripMarkup bool
}

func (c Cleaner) Clean(text string, f domain.Family) string {
	if c.StripMarkup {
		text = StripMarkup(text)
	}
	return Clean(text, f)
}
