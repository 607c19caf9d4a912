package domain

import "strings"

// LanguageCode 是从文件名后缀提取的语言代码。
//
// 约束：不透明标识符，不按任何标准（BCP-47/ISO 639）校验。
type LanguageCode string

// UnknownCode 用于文件名中没有 '_' 分隔符的情况。
const UnknownCode LanguageCode = "unknown"

// Family 是语言族标签，决定文本清洗规则与 TER 的 asian_support 取值。
type Family string

const (
	FamilyChinese        Family = "chinese"
	FamilyJapanese       Family = "japanese"
	FamilyKorean         Family = "korean"
	FamilyThai           Family = "thai"
	FamilyVietnamese     Family = "vietnamese"
	FamilyAsianCharBased Family = "asian_char_based"
	FamilyArabic         Family = "arabic"
	FamilyCyrillic       Family = "cyrillic"
	FamilyDefault        Family = "default"

	// FamilyUnknown 只出现在“意外错误”记录里（此时不信任任何已推导字段）。
	FamilyUnknown Family = "UNKNOWN"
)

func (f Family) String() string { return string(f) }

// CharBased 报告该语言族是否属于“词间无空格/字符级切分”的一组。
func (f Family) CharBased() bool {
	switch f {
	case FamilyChinese, FamilyJapanese, FamilyKorean, FamilyThai, FamilyVietnamese, FamilyAsianCharBased:
		return true
	default:
		return false
	}
}

// ParseFamily 把字符串解析为已知语言族（大小写不敏感）。
func ParseFamily(s string) (Family, bool) {
	f := Family(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FamilyChinese, FamilyJapanese, FamilyKorean, FamilyThai, FamilyVietnamese,
		FamilyAsianCharBased, FamilyArabic, FamilyCyrillic, FamilyDefault:
		return f, true
	default:
		return "", false
	}
}
