package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "playstream",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "playstream",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "path"})

	ActiveDownloads = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "playstream",
		Name:      "active_downloads",
		Help:      "Number of currently active downloads.",
	})

	BufferedDownloads = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "playstream",
		Name:      "buffered_downloads",
		Help:      "Number of active downloads that have crossed their buffering threshold.",
	})

	DownloadSpeedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "playstream",
		Name:      "download_speed_bytes",
		Help:      "Current aggregate download speed in bytes per second.",
	})

	UploadSpeedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "playstream",
		Name:      "upload_speed_bytes",
		Help:      "Current aggregate upload speed in bytes per second.",
	})

	SeedsConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "playstream",
		Name:      "seeds_connected",
		Help:      "Total number of seeds connected across all downloads.",
	})

	PeersConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "playstream",
		Name:      "peers_connected",
		Help:      "Total number of peers connected across all downloads.",
	})

	DownloadsFinishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "playstream",
		Name:      "downloads_finished_total",
		Help:      "Total number of downloads that reached a terminal outcome, by outcome.",
	}, []string{"outcome"})

	BufferingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "playstream",
		Name:      "buffering_duration_seconds",
		Help:      "Time from download start until the buffering threshold was reached.",
		Buckets:   []float64{5, 10, 30, 60, 120, 300, 600, 1800},
	})

	NoMediaTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "playstream",
		Name:      "no_media_found_total",
		Help:      "Total number of downloads abandoned because the torrent held no playable media, by origin.",
	}, []string{"origin"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ActiveDownloads,
		BufferedDownloads,
		DownloadSpeedBytes,
		UploadSpeedBytes,
		SeedsConnected,
		PeersConnected,
		DownloadsFinishedTotal,
		BufferingDuration,
		NoMediaTotal,
	)
}
