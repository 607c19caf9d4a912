package lang

import (
	"strings"

	"github.com/John-Robertt/terbatch/internal/domain"
)

// rule 是一条“语言族 + 子串集合”规则。
type rule struct {
	family   domain.Family
	patterns []string
}

// rules 按优先级排列；Detect 必须按此顺序求值，先命中者胜。
//
// 注意：一个代码可能同时命中多个语言族（例如 "ukr" 同时含 "kr" 与 "uk"），
// 结果依赖顺序。这里保留既有顺序，不做“修正”。
var rules = []rule{
	{domain.FamilyChinese, []string{"zh", "zh-cn", "zh-tw", "zh-sg", "zh-hk", "cmn", "chi"}},
	{domain.FamilyJapanese, []string{"ja", "jp", "jpn"}},
	{domain.FamilyKorean, []string{"ko", "kr", "kor"}},
	{domain.FamilyThai, []string{"th", "tha", "thai"}},
	{domain.FamilyVietnamese, []string{"vi", "vn", "vie"}},
	{domain.FamilyAsianCharBased, []string{"my", "mya", "burmese", "km", "khm", "khmer", "lo", "lao"}},
	{domain.FamilyArabic, []string{"ar", "ara", "arabic", "he", "heb", "hebrew", "fa", "per", "persian", "ur", "urd", "urdu"}},
	{domain.FamilyCyrillic, []string{"ru", "uk", "bg", "sr", "mk", "be", "kk", "uz", "ky", "tg", "mn"}},
}

// Detect 把语言代码映射到唯一的语言族。纯函数，且总能返回结果（兜底 default）。
func Detect(code domain.LanguageCode) domain.Family {
	low := strings.ToLower(string(code))
	for _, r := range rules {
		for _, p := range r.patterns {
			if strings.Contains(low, p) {
				return r.family
			}
		}
	}
	return domain.FamilyDefault
}

// Families 按优先级返回全部语言族（default 在最后）。
func Families() []domain.Family {
	out := make([]domain.Family, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.family)
	}
	return append(out, domain.FamilyDefault)
}

// Patterns 返回某个语言族的子串表副本（用于 help/probe 输出）。
func Patterns(f domain.Family) []string {
	for _, r := range rules {
		if r.family == f {
			return append([]string(nil), r.patterns...)
		}
	}
	return nil
}
