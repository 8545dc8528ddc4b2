package viaplay

type ProgressType string

const (
	ProgressSubtitle ProgressType = "SUBTITLE"
)

// ProgressReport is the data packet sent from the Client to the UI
type ProgressReport struct {
	Type    ProgressType
	Step    string
	Current int // 1-based index of the item being processed
	Total   int
	Message string
	Bytes   int64 // size of the finished item, 0 while in flight
}

// ProgressReporter is the interface used to "send" updates
type ProgressReporter interface {
	Report(report ProgressReport)
}

func report(pr ProgressReporter, r ProgressReport) {
	if pr != nil {
		pr.Report(r)
	}
}
