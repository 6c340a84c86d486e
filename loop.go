package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// maxRawLogBytes caps the raw-payload debug dump so a huge upstream response
// cannot flood the log.
const maxRawLogBytes = 10000

// Poller drives fetch → extract → build chain → format → deliver on a fixed
// interval, one instrument at a time. A single goroutine runs the loop; the
// status server is the only other reader and sees just the snapshot under mu.
type Poller struct {
	cfg    *Config
	source QuoteSource
	dests  []Destination

	stopCh   chan struct{}
	stopOnce sync.Once

	mu         sync.RWMutex
	cycleCount int
	lastCycle  time.Time
	lastPrices map[string]float64
}

func NewPoller(cfg *Config, source QuoteSource, dests []Destination) *Poller {
	return &Poller{
		cfg:        cfg,
		source:     source,
		dests:      dests,
		stopCh:     make(chan struct{}),
		lastPrices: make(map[string]float64),
	}
}

// Run executes poll cycles until Stop is called. A cycle failure that escapes
// per-instrument isolation is logged and followed by a bounded backoff; only
// an explicit stop ends the loop.
func (p *Poller) Run() {
	log.WithField("interval", p.cfg.PollInterval()).Info("starting poll loop")
	for {
		if p.stopped() {
			break
		}
		if err := p.RunOnce(); err != nil {
			log.WithError(err).Error("poll cycle failed unexpectedly")
			if !p.sleep(backoffDelay(p.cfg.PollInterval())) {
				break
			}
			continue
		}
		if !p.sleep(p.cfg.PollInterval() + jitter()) {
			break
		}
	}
	log.Info("poll loop stopped")
}

// RunOnce processes every configured instrument sequentially. One instrument
// failing does not stop the others; a stop request abandons the cycle at the
// next instrument boundary. The recover keeps the no-crash contract at a
// single point instead of scattering it through the stages.
func (p *Poller) RunOnce() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	cycleID := uuid.NewString()[:8]
	clog := log.WithField("cycle", cycleID)

	for _, inst := range p.cfg.Instruments {
		if p.stopped() {
			clog.Info("stop requested, abandoning cycle")
			return nil
		}
		p.pollInstrument(clog, inst)
	}

	p.mu.Lock()
	p.cycleCount++
	p.lastCycle = time.Now()
	p.mu.Unlock()
	return nil
}

func (p *Poller) pollInstrument(clog *log.Entry, inst Instrument) {
	ilog := clog.WithField("symbol", inst.Symbol)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	raw, err := p.source.Fetch(ctx, inst.SecurityID, inst.Exchange)
	cancel()
	if err != nil {
		ilog.WithError(err).Warn("quote fetch failed, skipping instrument this cycle")
		return
	}

	if log.IsLevelEnabled(log.DebugLevel) {
		ilog.Debugf("raw quote response: %s", truncateForLog(raw))
	}

	hit, ok := extractPrice(raw)
	if !ok {
		ilog.Info("no LTP this cycle")
		return
	}
	ilog.WithFields(log.Fields{"ltp": hit.Value, "path": hit.Path}).Info("LTP extracted")

	p.mu.Lock()
	p.lastPrices[inst.Symbol] = hit.Value
	p.mu.Unlock()

	chain := BuildChain(hit.Value, p.cfg.StrikeWindow, p.cfg.StrikeInterval)
	if len(chain) == 0 {
		ilog.Warn("empty chain, nothing to report")
		return
	}

	report := FormatReport(inst.Symbol, hit.Value, chain, time.Now())
	for _, dest := range p.dests {
		dctx, dcancel := context.WithTimeout(context.Background(), deliverTimeout)
		err := dest.Notifier.Deliver(dctx, dest.Target, report)
		dcancel()
		if err != nil {
			ilog.WithError(err).Warnf("%s delivery failed", dest.Notifier.Name())
			continue
		}
		ilog.Debugf("%s report delivered", dest.Notifier.Name())
	}
}

// Stop requests shutdown. An in-progress sleep is cancelled immediately; a
// cycle in flight is abandoned at the next instrument boundary.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

func (p *Poller) stopped() bool {
	select {
	case <-p.stopCh:
		return true
	default:
		return false
	}
}

// sleep waits for d or until Stop, whichever comes first. Returns false when
// stopped.
func (p *Poller) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-p.stopCh:
		return false
	}
}

// jitter returns a uniform duration in [0, 1s) to de-synchronize cycles.
// math/rand is fine here; nothing security-relevant depends on it.
func jitter() time.Duration {
	return time.Duration(rand.Int63n(int64(time.Second)))
}

// backoffDelay is the retry sleep after an unexpected cycle failure: the
// configured interval, capped at one minute.
func backoffDelay(interval time.Duration) time.Duration {
	if interval < time.Minute {
		return interval
	}
	return time.Minute
}

// Status is the loop snapshot served by the status endpoint.
type Status struct {
	CycleCount int                `json:"cycle_count"`
	LastCycle  time.Time          `json:"last_cycle"`
	Prices     map[string]float64 `json:"prices"`
}

func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	prices := make(map[string]float64, len(p.lastPrices))
	for sym, price := range p.lastPrices {
		prices[sym] = price
	}
	return Status{CycleCount: p.cycleCount, LastCycle: p.lastCycle, Prices: prices}
}

// truncateForLog renders a raw response for debug logging, bounded in size.
func truncateForLog(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<unprintable response: %v>", err)
	}
	if len(data) > maxRawLogBytes {
		data = data[:maxRawLogBytes]
	}
	return string(data)
}
