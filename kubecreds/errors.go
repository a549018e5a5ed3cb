package kubecreds

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMalformedCredentialMaterial covers PEM, certificate or kubeconfig text
// that cannot be parsed. It is fatal for the whole synthesis or aggregation.
var ErrMalformedCredentialMaterial = errors.New("malformed credential material")

// ErrUnknownCredential is returned by credential stores for ids they do not
// define.
var ErrUnknownCredential = errors.New("unknown credential")

// ErrFileSystem is returned when the kubeconfig file cannot be materialized.
var ErrFileSystem = errors.New("kubeconfig file system failure")

type Stage string

const (
	StageSynthesize Stage = "synthesize"
	StageAggregate  Stage = "aggregate"
	StageAcquire    Stage = "acquire"
)

// StageError records which credential and which stage produced a fatal error.
type StageError struct {
	Stage        Stage
	CredentialID string
	Err          error
}

func (e *StageError) Error() string {
	id := e.CredentialID
	if id == "" {
		id = "<none>"
	}
	return fmt.Sprintf("%s failed for credential %q: %v", e.Stage, id, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageError(stage Stage, credentialID string, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&StageError{Stage: stage, CredentialID: credentialID, Err: err})
}
