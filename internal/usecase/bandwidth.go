package usecase

import (
	"math"
	"time"

	"playstream/internal/domain"
)

// RateKBps converts a bytes-per-second rate to whole kilobytes per second,
// rounding half-up. Negative inputs report zero.
func RateKBps(bytesPerSec int64) float64 {
	if bytesPerSec <= 0 {
		return 0
	}
	return math.Floor(float64(bytesPerSec)/1024 + 0.5)
}

// EstimateETA projects the remaining transfer time from the elapsed wall time
// and the bytes transferred so far:
//
//	eta = elapsed * (totalSize - bytesTransferred) / bytesTransferred
//
// ok is false while no bytes have transferred; callers must treat that as
// "unknown", never as zero.
func EstimateETA(elapsed time.Duration, bytesTransferred, totalSize int64) (eta time.Duration, ok bool) {
	if bytesTransferred <= 0 {
		return 0, false
	}
	remaining := totalSize - bytesTransferred
	if remaining <= 0 {
		return 0, true
	}
	return time.Duration(float64(elapsed) * float64(remaining) / float64(bytesTransferred)), true
}

// ProgressPercent reports completion of the selected file against the
// total size excluding ignored files, clamped to [0,100].
func ProgressPercent(bytesCompleted, totalSize int64) float64 {
	if totalSize <= 0 {
		return 0
	}
	percent := float64(bytesCompleted) / float64(totalSize) * 100
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

func bandwidthSample(status domain.TransferStatus, elapsed time.Duration, bytesTransferred, totalSize int64) domain.BandwidthSample {
	sample := domain.BandwidthSample{
		DownloadRateKBps: RateKBps(status.DownloadRateBps),
		UploadRateKBps:   RateKBps(status.UploadRateBps),
	}
	sample.ETA, sample.HasETA = EstimateETA(elapsed, bytesTransferred, totalSize)
	return sample
}
