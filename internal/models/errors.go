package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
)

// Envelope errors
var (
	ErrIconTooLong               = errors.New("the icon can be 50 characters at most")
	ErrEnvelopeTypeInvalid       = errors.New("the envelope type must be one of: income, expense")
	ErrSubtypeInvalid            = errors.New("the envelope subtype must be one of: bill, spending, savings, goal, tracking, debt")
	ErrSuggestionTypeInvalid     = errors.New("the suggestion type must be one of: starter-stash, cc-holding, safety-net")
	ErrSuggestionTypeWithoutFlag = errors.New("only suggested envelopes can have a suggestion type")
	ErrSuggestionExists          = errors.New("an active suggestion of this type already exists")
	ErrTargetAmountNegative      = errors.New("the target amount must not be negative")
	ErrSnoozeNotFuture           = errors.New("the snooze expiry must be in the future")
)

// Allocation errors
var (
	ErrAllocationNotUnique = errors.New("there already is an allocation for this envelope")
	ErrAllocationLocked    = errors.New("the allocation is already locked")
	ErrAllocationNotLocked = errors.New("the allocation is not locked")
	ErrLockStateInvalid    = errors.New("the allocation lock flag and lock timestamp do not match")
)

// User errors
var ErrPayFrequencyInvalid = errors.New("the pay frequency must be one of: weekly, fortnightly, monthly")
