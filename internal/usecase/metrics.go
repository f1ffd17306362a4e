package usecase

// Metrics receives business counters. Implementations must be safe for concurrent use.
type Metrics interface {
	MatchScored()
	TeamsRecomputed(count int)
	DistributionCompleted(winners int)
	PayoutAttempted(status string)
	PaymentCaptured(duplicate bool)
}

type nopMetrics struct{}

func (nopMetrics) MatchScored() {}
func (nopMetrics) TeamsRecomputed(int) {}
func (nopMetrics) DistributionCompleted(int) {}
func (nopMetrics) PayoutAttempted(string) {}
func (nopMetrics) PaymentCaptured(bool) {}

func orNopMetrics(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
