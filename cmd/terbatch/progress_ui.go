package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/John-Robertt/terbatch/internal/app/run"
	"github.com/John-Robertt/terbatch/internal/config"
	"github.com/John-Robertt/terbatch/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端上的进度输出。
//
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - keepalive：单个大文件处理过久时定期输出一行
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	total   int
	done    int
	ok      int
	fail    int
	current string

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool

	okColor   *color.Color
	failColor *color.Color
	dimColor  *color.Color
}

func newProgressUI(w io.Writer, colorOn bool) *progressUI {
	p := &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
		okColor:            color.New(color.FgGreen, color.Bold),
		failColor:          color.New(color.FgRed, color.Bold),
		dimColor:           color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.okColor, p.failColor, p.dimColor} {
		if colorOn {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *progressUI) banner(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(p.w, "%s\n%s\n%s\n", rule, title, rule)
	p.lastPrinted = time.Now()
}

func (p *progressUI) line(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format+"\n", args...)
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnStart(eff config.EffectiveConfig, files []domain.SheetFile) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}
	p.total = len(files)

	fmt.Fprintf(p.w, "[%s] TER run\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  path: %s\n", eff.Path)
	fmt.Fprintf(p.w, "  mt_column: %s\n", eff.MTColumn)
	fmt.Fprintf(p.w, "  ref_column: %s\n", eff.RefColumn)
	fmt.Fprintf(p.w, "  strip_markup: %s\n", onOff(eff.StripMarkup))
	fmt.Fprintf(p.w, "  debug_files: %s\n", onOff(eff.DebugFiles))
	if eff.ConfigFile != "" {
		fmt.Fprintf(p.w, "  config: %s\n", eff.ConfigFile)
	}
	fmt.Fprintf(p.w, "  files: %d\n\n", p.total)

	p.lastPrinted = time.Now()
	if p.total > 0 && !p.tickerStarted {
		p.startTickerLocked()
	}
}

func (p *progressUI) OnFileStart(idx, total int, f domain.SheetFile, code domain.LanguageCode, family domain.Family) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = f.Name
	fmt.Fprintf(p.w, "[%d/%d] Processing %s (Language: %s, Family: %s)\n", idx, total, f.Name, code, family)
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnFileDone(idx, total int, rec domain.ScoreRecord, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total
	p.current = ""

	if rec.OK() {
		p.ok++
		fmt.Fprintf(p.w, "  %s TER Score = %.2f pairs=%d %s\n",
			p.okColor.Sprint("OK"), rec.Score, rec.Pairs, p.dimColor.Sprintf("(%s)", formatShortDuration(dur)),
		)
	} else {
		p.fail++
		fmt.Fprintf(p.w, "  %s %s: %s %s\n",
			p.failColor.Sprint("FAIL"), rec.ErrorCode, truncate(rec.ErrorMsg, 160), p.dimColor.Sprintf("(%s)", formatShortDuration(dur)),
		)
	}
	p.lastPrinted = time.Now()

	// 最后一条完成：停止 ticker，避免在结束打印后又冒出 keepalive。
	if p.tickerStarted && p.done >= p.total {
		p.stopTickerLocked()
	}
}

func (p *progressUI) OnDone(rr domain.RunReport, reportPath string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tickerStarted {
		p.stopTickerLocked()
	}
	fmt.Fprintln(p.w)
	if reportPath != "" {
		fmt.Fprintf(p.w, "TER scores saved to %s\n", reportPath)
	}
	fmt.Fprintf(p.w, "Processed %d files total\n", rr.Summary.Total)
	fmt.Fprintf(p.w, "Machine Translation Column: '%s'\n", rr.MTColumn)
	fmt.Fprintf(p.w, "Reference Translation Column: '%s'\n", rr.RefColumn)
	if rr.Summary.Scored > 0 {
		fmt.Fprintf(p.w, "TER mean=%.2f median=%.2f min=%.2f max=%.2f\n",
			rr.Summary.Mean, rr.Summary.Median, rr.Summary.Min, rr.Summary.Max,
		)
	}
	p.lastPrinted = time.Now()
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}
	stop := p.stopCh

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "进度: done=%d/%d ok=%d fail=%d current=%s elapsed=%s\n",
						p.done, p.total, p.ok, p.fail, truncate(p.current, 60), formatElapsed(time.Since(p.startedAt)),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func (p *progressUI) stopTickerLocked() {
	close(p.stopCh)
	p.tickerStarted = false
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// truncate 按显示宽度截断（CJK 字符占两列）。
func truncate(s string, width int) string {
	s = strings.TrimSpace(s)
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
