package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor passed to repository")

	// Purchase / entitlement errors. Each maps to a distinct user-facing
	// message via UserMessage.
	ErrUserNotFound         = errors.New("user not found")
	ErrProductNotFound      = errors.New("subscription product not found")
	ErrAlreadySubscribed    = errors.New("user already has an active subscription")
	ErrReceiptInvalid       = errors.New("receipt validation failed")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrRefundIneligible     = errors.New("subscription is not refundable")
)
