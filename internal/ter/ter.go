// Package ter 实现 Translation Edit Rate（TER），编辑距离、移位搜索与切分规则对齐 sacreBLEU 2.x 的 Tercom 移植版本。
//
// 唯一的扩展：Normalized 模式在套用切分规则前先做 Unicode NFC 归一化，
// 使组合字符与预组合字符得到相同的词。Tercom 与 sacreBLEU 都没有这一步。
package ter

import (
	"errors"
	"fmt"
)

var (
	ErrNoReferences   = errors.New("ter: no reference streams")
	ErrStreamMismatch = errors.New("ter: reference stream length differs from hypotheses")
)

// Metric 是一个配置好的 TER 计算器，可并发复用。
type Metric struct {
	opts Options
	tok  tokenizer
}

// Options 返回构造时使用的参数。
func (m *Metric) Options() Options { return m.opts }

// Score 是一次语料级 TER 的结果。
type Score struct {
	// Score 为百分制 TER（越低越好，可能超过 100）。
	Score float64
	// NumEdits 为所有句子的最少编辑数之和（含移位）。
	NumEdits float64
	// RefLength 为所有句子的平均参考长度之和。
	RefLength float64
}

func (s Score) String() string {
	return fmt.Sprintf("TER = %.2f", s.Score)
}

// CorpusScore 计算语料级 TER。refs 是一个或多个参考流，每个流与 hyps 等长。
func (m *Metric) CorpusScore(hyps []string, refs [][]string) (Score, error) {
	if len(refs) == 0 {
		return Score{}, ErrNoReferences
	}
	for i, stream := range refs {
		if len(stream) != len(hyps) {
			return Score{}, fmt.Errorf("%w: stream %d has %d lines, hypotheses have %d", ErrStreamMismatch, i, len(stream), len(hyps))
		}
	}

	var edits, refLen float64
	for i, hyp := range hyps {
		e, l, err := m.segment(hyp, refs, i)
		if err != nil {
			return Score{}, fmt.Errorf("ter: segment %d: %w", i, err)
		}
		edits += e
		refLen += l
	}
	return scoreFromStats(edits, refLen), nil
}

// SentenceScore 计算单句 TER。
func (m *Metric) SentenceScore(hyp string, refs []string) (Score, error) {
	streams := make([][]string, len(refs))
	for i, r := range refs {
		streams[i] = []string{r}
	}
	return m.CorpusScore([]string{hyp}, streams)
}

func (m *Metric) segment(hyp string, refs [][]string, i int) (float64, float64, error) {
	hypWords := m.tok.tokenize(hyp)
	best := -1
	total := 0
	for _, stream := range refs {
		edits, n, err := editsWithShifts(hypWords, m.tok.tokenize(stream[i]))
		if err != nil {
			return 0, 0, err
		}
		total += n
		if best < 0 || edits < best {
			best = edits
		}
	}
	return float64(best), float64(total) / float64(len(refs)), nil
}

func scoreFromStats(edits, refLen float64) Score {
	var rate float64
	switch {
	case refLen > 0:
		rate = edits / refLen
	case edits > 0:
		rate = 1
	}
	return Score{Score: 100 * rate, NumEdits: edits, RefLength: refLen}
}
