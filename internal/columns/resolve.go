// Package columns 负责挑选“机器翻译列”和“参考译文列”。
//
// Resolve 是纯函数：给定表头与用户回答，得出选择结果；Prompt 只是它之上的交互外壳。
package columns

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	mtKeywords = []string{"machinetranslation", "mt", "machine translation", "translation", "translated",
		"google", "deepl", "azure", "amazon", "hypothesis", "hyp", "output"}
	refKeywords = []string{"reference", "human", "human translation", "gold", "target", "ref",
		"ground truth", "manual", "expert"}
)

var (
	ErrNoColumns    = errors.New("no columns available")
	ErrNoSuggestion = errors.New("please enter a column number")
	ErrSameColumn   = errors.New("machine translation and reference columns must be different, please choose a different column")
)

// ChoiceError 表示一个无法解析的列选择。
type ChoiceError struct {
	Input string
	Max   int
}

func (e *ChoiceError) Error() string {
	if _, err := strconv.Atoi(e.Input); err != nil {
		return "please enter a valid number"
	}
	return fmt.Sprintf("please enter a number between 1 and %d", e.Max)
}

// Suggest 按关键字给出候选列（0 起下标，保持表头顺序）。
func Suggest(headers []string) (mt, ref []int) {
	for i, h := range headers {
		key := strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(h))
		if containsAny(key, mtKeywords) {
			mt = append(mt, i)
		}
		if containsAny(key, refKeywords) {
			ref = append(ref, i)
		}
	}
	return mt, ref
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Answers 是用户对三个问题的原始回答。
type Answers struct {
	// MT/Ref 为 1 起的列号或精确列名；空表示采用第一个建议。
	MT  string
	Ref string
	// Confirm 为 "n"/"no"（大小写不敏感）时取消，其余视为确认。
	Confirm string
}

// Result 是列选择结果。Cancelled 为 true 时 MT/Ref 为空。
type Result struct {
	MT        string
	Ref       string
	Cancelled bool
}

// Resolve 根据表头和回答得出选择结果。
func Resolve(headers []string, a Answers) (Result, error) {
	if len(headers) == 0 {
		return Result{}, ErrNoColumns
	}
	mtSug, refSug := Suggest(headers)

	mt, err := Choose(headers, a.MT, mtSug)
	if err != nil {
		return Result{}, fmt.Errorf("machine translation column: %w", err)
	}
	ref, err := Choose(headers, a.Ref, refSug)
	if err != nil {
		return Result{}, fmt.Errorf("reference column: %w", err)
	}
	if mt == ref {
		return Result{}, ErrSameColumn
	}
	if Cancels(a.Confirm) {
		return Result{Cancelled: true}, nil
	}
	return Result{MT: headers[mt], Ref: headers[ref]}, nil
}

// Choose 把一个回答解析为列下标。
func Choose(headers []string, answer string, suggested []int) (int, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		if len(suggested) == 0 {
			return 0, ErrNoSuggestion
		}
		return suggested[0], nil
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(headers) {
			return 0, &ChoiceError{Input: answer, Max: len(headers)}
		}
		return n - 1, nil
	}
	for i, h := range headers {
		if h == answer {
			return i, nil
		}
	}
	return 0, &ChoiceError{Input: answer, Max: len(headers)}
}

// Cancels 报告确认回答是否表示取消。
func Cancels(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "n", "no":
		return true
	default:
		return false
	}
}
