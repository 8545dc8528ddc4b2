package play

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/PiotrWarzachowski/go-viaplay-cli/internal/platform/viaplay"
)

// CLIReporter draws one bar over all subtitle files.
type CLIReporter struct {
	progress *mpb.Progress
	master   *mpb.Bar
	mu       sync.Mutex

	statusMsg    atomic.Value
	bytesHandled atomic.Int64
}

func NewCLIReporter() *CLIReporter {
	r := &CLIReporter{progress: mpb.New(mpb.WithWidth(60))}
	r.statusMsg.Store("Initializing...")
	return r
}

func (r *CLIReporter) Report(p viaplay.ProgressReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.master == nil {
		r.master = r.progress.AddBar(int64(p.Total),
			mpb.PrependDecorators(
				decor.Any(func(st decor.Statistics) string {
					return fmt.Sprintf("%-18s", r.status())
				}, decor.WCSyncSpaceR),
				decor.CountersNoUnit("%d / %d", decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.Any(func(st decor.Statistics) string {
					return fmt.Sprintf("%.1f KiB", float64(r.bytes())/1024)
				}, decor.WCSyncSpace),
				decor.Name(" | "),
				decor.OnComplete(
					decor.Elapsed(decor.ET_STYLE_GO), "✨ Done!",
				),
			),
		)
	}

	switch p.Step {
	case "DOWNLOADING":
		r.statusMsg.Store(fmt.Sprintf("💬 %s %d/%d", p.Message, p.Current, p.Total))
	case "SAVED":
		r.bytesHandled.Add(p.Bytes)
		r.master.SetCurrent(int64(p.Current))
	}
}

func (r *CLIReporter) status() string {
	s, _ := r.statusMsg.Load().(string)
	return s
}

func (r *CLIReporter) bytes() int64 { return r.bytesHandled.Load() }

func (r *CLIReporter) Wait() {
	r.mu.Lock()
	bar := r.master
	r.mu.Unlock()

	if bar != nil && !bar.Completed() {
		bar.Abort(false)
	}
	r.progress.Wait()
}
