package ter

import (
	"fmt"
	"reflect"
	"sort"
)

// ParamTag 是 Options 字段上声明“构造参数名”的 struct tag 键。
// 能力探测（capability 包）依赖它来读取构造函数实际接受的参数。
const ParamTag = "param"

// Options 是 TER 的可选参数，字段语义与 sacreBLEU 2.x 的 TER 构造参数一致。
type Options struct {
	// Normalized 启用 Tercom 的通用/西文标点切分规则。
	Normalized bool `param:"normalized"`
	// NoPunct 删除标点。
	NoPunct bool `param:"no_punct"`
	// AsianSupport 在 Normalized/NoPunct 下额外处理 CJK 字符与全角标点。
	AsianSupport bool `param:"asian_support"`
	// CaseSensitive 为 false 时先整体转小写。
	CaseSensitive bool `param:"case_sensitive"`
}

// ParamError 表示按名字构造时传入了不被接受的参数。
type ParamError struct {
	Name   string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("ter: parameter %q: %s", e.Name, e.Reason)
}

// New 使用类型化参数构造 Metric。
func New(opts Options) *Metric {
	return &Metric{opts: opts, tok: tokenizer{opts: opts}}
}

// NewWithParams 以“参数名 => 值”的方式构造 Metric；params 为空表示全部默认值。
//
// 未知参数名或非 bool 值返回 *ParamError（调用方据此回退到默认参数）。
func NewWithParams(params map[string]any) (*Metric, error) {
	var opts Options
	v := reflect.ValueOf(&opts).Elem()
	index := paramIndex(v.Type())

	// 固定遍历顺序，保证报错信息稳定。
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		i, ok := index[name]
		if !ok {
			return nil, &ParamError{Name: name, Reason: "unknown parameter"}
		}
		b, ok := params[name].(bool)
		if !ok {
			return nil, &ParamError{Name: name, Reason: fmt.Sprintf("want bool, got %T", params[name])}
		}
		v.Field(i).SetBool(b)
	}
	return New(opts), nil
}

func paramIndex(t reflect.Type) map[string]int {
	out := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name := t.Field(i).Tag.Get(ParamTag); name != "" {
			out[name] = i
		}
	}
	return out
}
