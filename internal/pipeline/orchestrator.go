package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Stage is one step of a pipeline cycle: ingest, quality scan,
// transform.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// Orchestrator runs stages strictly in order and aborts the cycle on
// the first failure, so the quality scan gates the transform.
type Orchestrator struct {
	stages []Stage
	log    *zap.SugaredLogger
}

// NewOrchestrator creates an Orchestrator over the given stages.
func NewOrchestrator(log *zap.SugaredLogger, stages ...Stage) *Orchestrator {
	return &Orchestrator{stages: stages, log: log}
}

// RunCycle executes every stage sequentially. A stage failure aborts
// the cycle and is reported as the cycle's failure.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	for _, stage := range o.stages {
		o.log.Infow("running stage", "stage", stage.Name)
		if err := stage.Run(ctx); err != nil {
			o.log.Errorw("stage failed, aborting cycle", "stage", stage.Name, "error", err)
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		o.log.Infow("stage completed", "stage", stage.Name)
	}
	return nil
}
