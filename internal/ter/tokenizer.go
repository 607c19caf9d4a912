package ter

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type replaceRule struct {
	re   *regexp.Regexp
	repl string
}

func rr(pattern, repl string) replaceRule {
	return replaceRule{re: regexp.MustCompile(pattern), repl: repl}
}

// 通用/西文规则（Tercom normalized 模式），顺序有意义。
var westernRules = []replaceRule{
	// 去掉行尾连字符并合并行
	rr(`\n-`, ""),
	rr(`\n`, " "),
	// XML 转义
	rr(`&quot;`, `"`),
	rr(`&amp;`, "&"),
	rr(`&lt;`, "<"),
	rr(`&gt;`, ">"),
	// 标点切分
	rr("([{-~\\[-` -&(-+:-@/])", " ${1} "),
	// 所有格
	rr(`'s `, " 's "),
	rr(`'s$`, " 's"),
	// 句点/逗号：前面不是数字时切开
	rr(`([^0-9])([\.,])`, "${1} ${2} "),
	// 句点/逗号：后面不是数字时切开
	rr(`([\.,])([^0-9])`, " ${1} ${2}"),
	// 数字后的连字符
	rr(`([0-9])(-)`, "${1} ${2} "),
}

const (
	asianPunct     = `[\x{3001}\x{3002}\x{3008}-\x{3011}\x{3014}-\x{301f}\x{ff61}-\x{ff65}\x{30fb}]`
	fullWidthPunct = `[\x{ff0e}\x{ff0c}\x{ff1f}\x{ff1a}\x{ff1b}\x{ff01}\x{ff02}\x{ff08}\x{ff09}]`
)

var asianRules = []replaceRule{
	// CJK 统一表意文字（含扩展 A）切到字符级
	rr(`([\x{4e00}-\x{9fff}\x{3400}-\x{4dbf}])`, " ${1} "),
	// 笔画、部首补充
	rr(`([\x{31c0}-\x{31ef}\x{2e80}-\x{2eff}])`, " ${1} "),
	// CJK 兼容字符/表意文字/形式
	rr(`([\x{3300}-\x{33ff}\x{f900}-\x{faff}\x{fe30}-\x{fe4f}])`, " ${1} "),
	// 带圈 CJK 字母与月份
	rr(`([\x{3200}-\x{3f22}])`, " ${1} "),
	// 平假名/片假名/片假名音标扩展：整段时才切开
	rr(`^([\x{3040}-\x{309f}]+)$`, " ${1} "),
	rr(`^([\x{30a0}-\x{30ff}]+)$`, " ${1} "),
	rr(`^([\x{31f0}-\x{31ff}]+)$`, " ${1} "),
	rr(`(`+asianPunct+`)`, " ${1} "),
	rr(`(`+fullWidthPunct+`)`, " ${1} "),
}

var (
	westernPunctRE   = regexp.MustCompile(`[\.,\?:;!"\(\)]`)
	asianPunctRE     = regexp.MustCompile(asianPunct)
	fullWidthPunctRE = regexp.MustCompile(fullWidthPunct)
)

// tokenizer 把一句话切成 TER 的词序列。
type tokenizer struct {
	opts Options
}

func (t tokenizer) tokenize(sent string) []string {
	if sent == "" {
		return nil
	}
	if !t.opts.CaseSensitive {
		sent = strings.ToLower(sent)
	}
	if t.opts.Normalized {
		// 扩展：Tercom 不做 NFC。
		sent = norm.NFC.String(sent)
		sent = apply(westernRules, " "+sent+" ")
		if t.opts.AsianSupport {
			sent = apply(asianRules, sent)
		}
	}
	if t.opts.NoPunct {
		sent = westernPunctRE.ReplaceAllString(sent, "")
		if t.opts.AsianSupport {
			sent = asianPunctRE.ReplaceAllString(sent, "")
			sent = fullWidthPunctRE.ReplaceAllString(sent, "")
		}
	}
	return strings.Fields(sent)
}

func apply(rules []replaceRule, s string) string {
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}
