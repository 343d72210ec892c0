package recorder

import "TontineSim/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) BeginRun(_ *RunInfo) error                                   { return nil }
func (n *NoopRecorder) ReportMonth(_ *model.LedgerState, _ model.MonthSummary) error { return nil }
func (n *NoopRecorder) ReportCycle(_ *model.LedgerState, _ model.CycleSummary) error { return nil }
func (n *NoopRecorder) ReportFinal(_ *model.LedgerState, _ model.FinalReport) error  { return nil }
func (n *NoopRecorder) Close() error                                                 { return nil }
