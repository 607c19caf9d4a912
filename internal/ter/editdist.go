package ter

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	costIns   = 1
	costDel   = 1
	costSub   = 1
	costShift = 1

	maxShiftSize       = 10
	maxShiftDist       = 50
	beamWidth          = 25
	maxShiftCandidates = 1000
	maxCacheSize       = 10000

	// 留出余量：beam 外的格子保持 inf，邻格在其上再加 1 也不会溢出。
	inf = math.MaxInt / 2
)

type op byte

const (
	opNop   op = ' '
	opSub   op = 's'
	opIns   op = 'i'
	opDel   op = 'd'
	opUndef op = 'x'
)

var errBrokenTrace = errors.New("ter: edit trace reached an uncomputed cell")

type cell struct {
	cost int
	op   op
}

type edResult struct {
	dist  int
	trace []op
}

// beamEditDistance 计算“hyp -> 固定 ref”的 Levenshtein 距离（带 beam 限制），并缓存结果。
// 同一个 ref 会被大量移位候选反复调用。
type beamEditDistance struct {
	ref   []string
	cache map[string]edResult
}

func newBeamEditDistance(ref []string) *beamEditDistance {
	return &beamEditDistance{ref: ref, cache: make(map[string]edResult, 64)}
}

func (b *beamEditDistance) distance(hyp []string) (int, []op, error) {
	key := cacheKey(hyp)
	if r, ok := b.cache[key]; ok {
		return r.dist, r.trace, nil
	}
	dist, trace, err := b.compute(hyp)
	if err != nil {
		return 0, nil, err
	}
	if len(b.cache) < maxCacheSize {
		b.cache[key] = edResult{dist: dist, trace: trace}
	}
	return dist, trace, nil
}

// cacheKey 以“长度:词”拼接，任何词内容都不会与其它切分冲突。
func cacheKey(words []string) string {
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(strconv.Itoa(len(w)))
		sb.WriteByte(':')
		sb.WriteString(w)
	}
	return sb.String()
}

func (b *beamEditDistance) compute(hyp []string) (int, []op, error) {
	nh, nr := len(hyp), len(b.ref)

	mat := make([][]cell, nh+1)
	mat[0] = make([]cell, nr+1)
	for j := 0; j <= nr; j++ {
		mat[0][j] = cell{cost: j * costIns, op: opIns}
	}
	for i := 1; i <= nh; i++ {
		mat[i] = make([]cell, nr+1)
		for j := range mat[i] {
			mat[i][j] = cell{cost: inf, op: opUndef}
		}
	}

	ratio := 1.0
	if nh > 0 {
		ratio = float64(nr) / float64(nh)
	}
	beam := beamWidth
	if float64(beamWidth) < ratio/2 {
		beam = int(math.Ceil(ratio/2 + beamWidth))
	}

	for i := 1; i <= nh; i++ {
		diag := int(math.Floor(float64(i) * ratio))
		minJ := max(0, diag-beam)
		maxJ := min(nr+1, diag+beam)
		if i == nh {
			maxJ = nr + 1
		}
		for j := minJ; j < maxJ; j++ {
			if j == 0 {
				mat[i][0] = cell{cost: mat[i-1][0].cost + costDel, op: opDel}
				continue
			}
			sub, subOp := costSub, opSub
			if hyp[i-1] == b.ref[j-1] {
				sub, subOp = 0, opNop
			}
			// 这里的 ins/del 以 hyp -> ref 为视角：ins 消耗一个 ref 词，del 消耗一个 hyp 词。
			// 代价相同时依次偏好 nop/sub、del、ins：trace 之后会被翻转，
			// 翻转后对应 Tercom 的 nop/sub、ins、del 顺序。
			cands := [3]cell{
				{cost: mat[i-1][j-1].cost + sub, op: subOp},
				{cost: mat[i-1][j].cost + costDel, op: opDel},
				{cost: mat[i][j-1].cost + costIns, op: opIns},
			}
			for _, c := range cands {
				if mat[i][j].cost > c.cost {
					mat[i][j] = c
				}
			}
		}
	}

	trace := make([]op, 0, nh+nr)
	i, j := nh, nr
	for i > 0 || j > 0 {
		o := mat[i][j].op
		trace = append(trace, o)
		switch o {
		case opSub, opNop:
			i--
			j--
		case opIns:
			j--
		case opDel:
			i--
		default:
			return 0, nil, errBrokenTrace
		}
	}
	for l, r := 0, len(trace)-1; l < r; l, r = l+1, r-1 {
		trace[l], trace[r] = trace[r], trace[l]
	}
	return mat[nh][nr].cost, trace, nil
}

// editsWithShifts 返回把 hyp 改写为 ref 所需的编辑数（含移位）以及 ref 长度。
func editsWithShifts(hyp, ref []string) (edits int, refLen int, err error) {
	if len(ref) == 0 {
		return len(hyp), 0, nil
	}

	ed := newBeamEditDistance(ref)
	shifts := 0
	input := hyp
	checked := 0
	for {
		gain, next, n, err := bestShift(input, ref, ed, checked)
		if err != nil {
			return 0, 0, err
		}
		checked = n
		if checked >= maxShiftCandidates || gain <= 0 {
			break
		}
		shifts++
		input = next
	}

	dist, _, err := ed.distance(input)
	if err != nil {
		return 0, 0, err
	}
	return shifts*costShift + dist, len(ref), nil
}

type shiftCandidate struct {
	gain   int
	length int
	startH int
	target int
	words  []string
}

// better 复刻 Tercom 的移位排序：收益高者优先，其次更长，其次起点更早，其次目标位置更早。
func (c shiftCandidate) better(o shiftCandidate) bool {
	if c.gain != o.gain {
		return c.gain > o.gain
	}
	if c.length != o.length {
		return c.length > o.length
	}
	if c.startH != o.startH {
		return c.startH < o.startH
	}
	return c.target < o.target
}

func bestShift(hyp, ref []string, ed *beamEditDistance, checked int) (int, []string, int, error) {
	pre, invTrace, err := ed.distance(hyp)
	if err != nil {
		return 0, nil, checked, err
	}
	// 对齐按“把 ref 改写为 hyp”计算，所以先翻转编辑操作。
	align, refErr, hypErr := traceToAlignment(flipTrace(invTrace))

	var best *shiftCandidate
	stop := false
	findShiftedPairs(hyp, ref, func(startH, startR, length int) bool {
		// 只有 hyp 这一段有错，且 ref 目标处也不匹配时才移位。
		if sum(hypErr[startH:startH+length]) == 0 {
			return true
		}
		if sum(refErr[startR:startR+length]) == 0 {
			return true
		}
		// 不在自身内部移位。
		if startH <= align[startR] && align[startR] < startH+length {
			return true
		}

		prev := -1
		for offset := -1; offset < length && startR+offset < len(align); offset++ {
			idx := 0 // 插入到开头
			if startR+offset >= 0 {
				idx = align[startR+offset] + 1
			}
			if idx == prev {
				continue
			}
			prev = idx

			shifted := performShift(hyp, startH, length, idx)
			d, _, e := ed.distance(shifted)
			if e != nil {
				err = e
				stop = true
				return false
			}
			c := shiftCandidate{gain: pre - d, length: length, startH: startH, target: idx, words: shifted}
			checked++
			if best == nil || c.better(*best) {
				best = &c
			}
		}
		return checked < maxShiftCandidates
	})
	if stop {
		return 0, nil, checked, err
	}
	if best == nil {
		return 0, hyp, checked, nil
	}
	return best.gain, best.words, checked, nil
}

// findShiftedPairs 枚举 hyp 与 ref 中相同的子串 (startH, startR, length)。
// visit 返回 false 时停止枚举。
func findShiftedPairs(hyp, ref []string, visit func(startH, startR, length int) bool) {
	nh, nr := len(hyp), len(ref)
	for startH := 0; startH < nh; startH++ {
		for startR := 0; startR < nr; startR++ {
			if abs(startR-startH) > maxShiftDist {
				continue
			}
			for length := 1; length <= maxShiftSize; length++ {
				if hyp[startH+length-1] != ref[startR+length-1] {
					break
				}
				if !visit(startH, startR, length) {
					return
				}
				// 任一序列耗尽即停止。
				if startH+length == nh || startR+length == nr {
					break
				}
			}
		}
	}
}

func performShift(words []string, start, length, target int) []string {
	n := len(words)
	clip := func(i int) int { return min(i, n) }
	out := make([]string, 0, n)
	switch {
	case target < start:
		// 移到原位置之前
		out = append(out, words[:target]...)
		out = append(out, words[start:start+length]...)
		out = append(out, words[target:start]...)
		out = append(out, words[start+length:]...)
	case target > start+length:
		// 移到原位置之后
		out = append(out, words[:start]...)
		out = append(out, words[start+length:target]...)
		out = append(out, words[start:start+length]...)
		out = append(out, words[target:]...)
	default:
		// 目标落在被移动的片段内部
		out = append(out, words[:start]...)
		out = append(out, words[clip(start+length):clip(length+target)]...)
		out = append(out, words[start:start+length]...)
		out = append(out, words[clip(length+target):]...)
	}
	return out
}

func flipTrace(trace []op) []op {
	out := make([]op, len(trace))
	for i, o := range trace {
		switch o {
		case opIns:
			out[i] = opDel
		case opDel:
			out[i] = opIns
		default:
			out[i] = o
		}
	}
	return out
}

// traceToAlignment 根据编辑轨迹计算 ref 位置到 hyp 位置的对齐，以及两侧的错误标记。
func traceToAlignment(trace []op) (align []int, refErr []int, hypErr []int) {
	posHyp, posRef := -1, -1
	for _, o := range trace {
		switch o {
		case opNop, opSub:
			posHyp++
			posRef++
			align = append(align, posHyp)
			e := 0
			if o == opSub {
				e = 1
			}
			hypErr = append(hypErr, e)
			refErr = append(refErr, e)
		case opIns:
			posHyp++
			hypErr = append(hypErr, 1)
		case opDel:
			posRef++
			align = append(align, posHyp)
			refErr = append(refErr, 1)
		}
	}
	return align, refErr, hypErr
}

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}

func abs(n int) int {
	if n >= 0 {
		return n
	}
	return -n
}
