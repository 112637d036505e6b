package model

// Stage identifies the phase at which a backend probe failed. Stages run in
// order config -> instance -> auth and the report carries the first failure.
type Stage string

const (
	StageConfig   Stage = "config"
	StageInstance Stage = "instance"
	StageAuth     Stage = "auth"
)

// CheckReport is the transient result of a merchant backend probe.
type CheckReport struct {
	OK bool

	// Failure details; meaningful only when OK is false. HTTPStatus is zero
	// when the failure happened below the HTTP layer, ErrorSlug is the
	// backend's error identifier when one was returned.
	Stage      Stage
	HTTPStatus int
	ErrorSlug  string
}
