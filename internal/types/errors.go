package types

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMismatch means an expected positional or named column is absent.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrNoSourceFiles means the source folder holds no PO export files.
	ErrNoSourceFiles = errors.New("no source files found")
)

// Stage names a step of the batch run.
type Stage string

const (
	StageExtract     Stage = "extract"
	StageLoadLookups Stage = "load-lookups"
	StageJoin        Stage = "join"
	StageProject     Stage = "project"
	StageWrite       Stage = "write"
)

// StageError records which stage of a run failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
