package ports

import "playstream/internal/domain"

// Observers receive per-tick updates while a download is being monitored.
// All of them are initialized to a zero state before any engine interaction,
// so a consumer never sees an undefined initial value. Nil funcs are allowed.
type Observers struct {
	Progress  func(percent float64)
	Bandwidth func(sample domain.BandwidthSample)
	Seeds     func(count int)
	Peers     func(count int)
}

func (o Observers) ReportProgress(percent float64) {
	if o.Progress != nil {
		o.Progress(percent)
	}
}

func (o Observers) ReportBandwidth(sample domain.BandwidthSample) {
	if o.Bandwidth != nil {
		o.Bandwidth(sample)
	}
}

func (o Observers) ReportSeeds(count int) {
	if o.Seeds != nil {
		o.Seeds(count)
	}
}

func (o Observers) ReportPeers(count int) {
	if o.Peers != nil {
		o.Peers(count)
	}
}

// Zero pushes the neutral initial state to every observer.
func (o Observers) Zero() {
	o.ReportProgress(0)
	o.ReportBandwidth(domain.BandwidthSample{})
	o.ReportSeeds(0)
	o.ReportPeers(0)
}

// Callbacks are the terminal signals of one download. Buffered fires at most
// once, when the buffering threshold is reached; it does not guarantee the
// media path resolved (a no-media notification may follow immediately).
// Cancelled fires exactly once if the download is cancelled.
type Callbacks struct {
	Buffered  func()
	Cancelled func()
}

func (c Callbacks) SignalBuffered() {
	if c.Buffered != nil {
		c.Buffered()
	}
}

func (c Callbacks) SignalCancelled() {
	if c.Cancelled != nil {
		c.Cancelled()
	}
}
