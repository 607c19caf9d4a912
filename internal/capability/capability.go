// Package capability 探测 TER 计算器构造函数实际接受哪些可选参数，并给出按语系的参数策略。
package capability

import (
	"reflect"
	"sort"

	"github.com/John-Robertt/terbatch/internal/domain"
	"github.com/John-Robertt/terbatch/internal/ter"
)

// 可选参数名。
const (
	CaseSensitive = "case_sensitive"
	Normalize     = "normalize"
	NoPunct       = "no_punct"
	AsianSupport  = "asian_support"
	NoWhitespace  = "no_whitespace"
)

// Names 返回全部可探测的参数名（固定顺序）。
func Names() []string {
	return []string{CaseSensitive, Normalize, NoPunct, AsianSupport, NoWhitespace}
}

// Set 记录每个参数是否可用。批次开始时计算一次，之后只读。
type Set map[string]bool

// Has 报告 name 是否可用。
func (s Set) Has(name string) bool { return s[name] }

// Available 返回可用参数名（排序后）。
func (s Set) Available() []string {
	out := make([]string, 0, len(s))
	for name, ok := range s {
		if ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Probe 通过反射读取构造函数首个参数（结构体或结构体指针）字段上的 param tag。
//
// 任何异常（nil、非函数、无结构体参数、反射 panic）都返回空 Set，不向外 panic。
func Probe(ctor any) (set Set) {
	set = Set{}
	defer func() {
		if recover() != nil {
			set = Set{}
		}
	}()

	if ctor == nil {
		return set
	}
	t := reflect.TypeOf(ctor)
	if t.Kind() != reflect.Func || t.NumIn() == 0 {
		return set
	}
	in := t.In(0)
	if in.Kind() == reflect.Pointer {
		in = in.Elem()
	}
	if in.Kind() != reflect.Struct {
		return set
	}

	accepted := make(map[string]bool, in.NumField())
	for i := 0; i < in.NumField(); i++ {
		if name := in.Field(i).Tag.Get(ter.ParamTag); name != "" {
			accepted[name] = true
		}
	}
	for _, name := range Names() {
		set[name] = accepted[name]
	}
	return set
}

// Options 是静态参数策略：只包含 set 中可用的参数。
func Options(f domain.Family, set Set) map[string]any {
	policy := map[string]bool{
		CaseSensitive: false,
		Normalize:     true,
		NoPunct:       false,
		NoWhitespace:  false,
		AsianSupport:  f.CharBased(),
	}
	out := make(map[string]any, len(policy))
	for name, v := range policy {
		if set.Has(name) {
			out[name] = v
		}
	}
	return out
}
