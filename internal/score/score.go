// Package score 组合能力探测与参数策略调用 TER 计算器，失败时回退到默认参数。
package score

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/John-Robertt/terbatch/internal/capability"
	"github.com/John-Robertt/terbatch/internal/domain"
	"github.com/John-Robertt/terbatch/internal/ter"
)

// ErrComputationFailed 表示带参与默认参数两次尝试均失败。
var ErrComputationFailed = errors.New("TER computation failed")

// Metric 是语料级打分器。
type Metric interface {
	CorpusScore(hyps []string, refs [][]string) (ter.Score, error)
}

// Constructor 按“参数名 => 值”构造打分器；params 为空表示全部默认值。
type Constructor func(params map[string]any) (Metric, error)

// Computer 计算一个文件的 TER。
type Computer struct {
	New  Constructor
	Caps capability.Set
	Log  zerolog.Logger
}

// Default 使用内置 TER 实现，能力集从其类型化构造函数探测。
func Default(log zerolog.Logger) *Computer {
	return &Computer{
		New: func(params map[string]any) (Metric, error) {
			return ter.NewWithParams(params)
		},
		Caps: capability.Probe(ter.New),
		Log:  log,
	}
}

// Compute 对位置对齐的 hyps/refs 计算语料级 TER 分数。
//
// 先用按语系推导的参数；失败（含 panic）时记一条警告并用默认参数重试一次；
// 重试仍失败返回包裹 ErrComputationFailed 的错误。
func (c *Computer) Compute(hyps, refs []string, f domain.Family) (float64, error) {
	opts := capability.Options(f, c.Caps)
	s, err := c.attempt(opts, hyps, refs)
	if err == nil {
		return s, nil
	}
	c.Log.Warn().Err(err).Str("family", f.String()).Interface("options", opts).
		Msg("TER with options failed, retrying with defaults")

	s, err = c.attempt(nil, hyps, refs)
	if err != nil {
		c.Log.Error().Err(err).Str("family", f.String()).Msg("TER with defaults failed")
		return 0, fmt.Errorf("%w: %v", ErrComputationFailed, err)
	}
	return s, nil
}

func (c *Computer) attempt(opts map[string]any, hyps, refs []string) (s float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if c.New == nil {
		return 0, errors.New("no scorer constructor")
	}
	m, err := c.New(opts)
	if err != nil {
		return 0, err
	}
	res, err := m.CorpusScore(hyps, [][]string{refs})
	if err != nil {
		return 0, err
	}
	return res.Score, nil
}
