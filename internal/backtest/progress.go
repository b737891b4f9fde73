package backtest

// progress.go: avance de trabajos largos (grid search).
//
// Combina una barra de progreso en terminal con logs estructurados
// limitados por rate, para que un grid de cientos de corridas no inunde el log.

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/time/rate"
)

const defaultProgressLogEvery = 5 * time.Second

// Progress cuenta unidades completadas de un total conocido.
// Es seguro para uso concurrente.
type Progress struct {
	mu      sync.Mutex
	label   string
	total   int
	done    int
	start   time.Time
	bar     *pb.ProgressBar
	limiter *rate.Limiter
}

// NewProgress inicia el conteo. La barra se escribe en w; nil la oculta.
func NewProgress(label string, total int, w io.Writer) *Progress {
	if w == nil {
		w = io.Discard
	}
	bar := pb.New(total)
	bar.SetWriter(w)
	bar.Start()

	return &Progress{
		label:   label,
		total:   total,
		start:   bar.StartTime(),
		bar:     bar,
		limiter: rate.NewLimiter(rate.Every(defaultProgressLogEvery), 1),
	}
}

// Increment registra una unidad completada.
func (p *Progress) Increment() {
	p.mu.Lock()
	p.done++
	done := p.done
	p.mu.Unlock()

	p.bar.Increment()

	if done == p.total || p.limiter.Allow() {
		elapsed, remaining := p.Estimate()
		slog.Info("progress",
			"task", p.label,
			"done", done,
			"total", p.total,
			"pct", percent(done, p.total),
			"elapsed", elapsed.Round(time.Second),
			"remaining", remaining.Round(time.Second),
		)
	}
}

// Done devuelve las unidades completadas.
func (p *Progress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Estimate devuelve el tiempo transcurrido y el restante estimado
// a ritmo constante.
func (p *Progress) Estimate() (elapsed, remaining time.Duration) {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	elapsed = time.Since(p.start)
	if done == 0 || done >= p.total {
		return elapsed, 0
	}
	perUnit := elapsed / time.Duration(done)
	return elapsed, perUnit * time.Duration(p.total-done)
}

// Finish cierra la barra.
func (p *Progress) Finish() time.Duration {
	p.bar.Finish()
	return time.Since(p.start)
}

func percent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}
