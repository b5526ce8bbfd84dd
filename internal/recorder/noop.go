package recorder

import "Bingo2Gether/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTransactions(_ string, _ []model.Transaction) error { return nil }
func (n *NoopRecorder) RecordUndo(_ string, _ []model.Transaction) error         { return nil }
func (n *NoopRecorder) RecordOperation(_ *OperationEvent) error                 { return nil }
func (n *NoopRecorder) Close() error                                            { return nil }
