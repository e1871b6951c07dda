package anim

import "errors"

// Animation errors.
var (
	ErrUnknownAnimation = errors.New("unknown animation")
	ErrContinuousAction = errors.New("an action cannot be continuous")
	ErrEmptyAction      = errors.New("an action needs at least one loop")
	ErrPassActive       = errors.New("pose pass already active: call End first")
	ErrNoPass           = errors.New("no active pose pass: call Begin first")
	ErrDuplicateID      = errors.New("duplicate animation id")
	ErrUnsortedKeys     = errors.New("keyframes not sorted by time")
	ErrWeightArity      = errors.New("weight keyframes differ in length")
)
