package sync

import "fmt"

// Stage names one phase of a sync run
type Stage string

// Stages in execution order
const (
	StageResolve    Stage = "resolve manifest"
	StageDuplicates Stage = "filter duplicates"
	StageReconcile  Stage = "reconcile"
	StageDownload   Stage = "download"
	StageInstall    Stage = "install overrides"
	StageDone       Stage = "done"
)

// StageError reports which stage aborted a run. Filesystem effects of earlier
// stages are left in place.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
