/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when adding a record whose key is already taken
	ErrAlreadyExists = errors.New("record already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotBooted is returned when a lifecycle operation runs on an unbooted model
	ErrNotBooted = errors.New("model not booted")

	// ErrStorageNotInitialized is returned when the gateway is used before Connect
	ErrStorageNotInitialized = errors.New("storage not initialized: call Connect first")

	// ErrStorageOperation is returned when the backing store rejects a read or write
	ErrStorageOperation = errors.New("storage operation failed")

	// ErrUnknownPartition is returned when a partition is not part of the open connection
	ErrUnknownPartition = errors.New("unknown partition")

	// ErrVersion is returned when a database is opened with a version older than the stored one
	ErrVersion = errors.New("database version mismatch")

	// ErrInvalidOperator is returned by strict queries using an unrecognised comparison operator
	ErrInvalidOperator = errors.New("invalid comparison operator")
)

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when a record already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// BootError is returned when a lifecycle operation is attempted before the model booted.
type BootError struct {
	Type string
	Op   string
}

func (e *BootError) Error() string {
	return fmt.Sprintf("cannot %s %s: model not booted", e.Op, e.Type)
}

func (e *BootError) Is(target error) bool {
	return target == ErrNotBooted
}

// StorageOperationError wraps a failure reported by the backing store.
// The backend error stays reachable through errors.Unwrap.
type StorageOperationError struct {
	Op        string
	Partition string
	Err       error
}

func (e *StorageOperationError) Error() string {
	return fmt.Sprintf("%s on partition %q failed: %v", e.Op, e.Partition, e.Err)
}

func (e *StorageOperationError) Is(target error) bool {
	return target == ErrStorageOperation
}

func (e *StorageOperationError) Unwrap() error {
	return e.Err
}

// UnknownPartitionError is returned when a partition is not present in the open connection.
type UnknownPartitionError struct {
	Partition string
}

func (e *UnknownPartitionError) Error() string {
	return fmt.Sprintf("partition %q does not exist in this connection", e.Partition)
}

func (e *UnknownPartitionError) Is(target error) bool {
	return target == ErrUnknownPartition
}

// VersionError is returned when the requested database version is lower than the stored one.
type VersionError struct {
	Database  string
	Requested int
	Stored    int
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("database %q: requested version %d is less than stored version %d", e.Database, e.Requested, e.Stored)
}

func (e *VersionError) Is(target error) bool {
	return target == ErrVersion
}

// InvalidOperatorError is returned by strict queries for operators outside = != > < >= <=.
type InvalidOperatorError struct {
	Field    string
	Operator string
}

func (e *InvalidOperatorError) Error() string {
	return fmt.Sprintf("invalid operator %q in condition on field %q", e.Operator, e.Field)
}

func (e *InvalidOperatorError) Is(target error) bool {
	return target == ErrInvalidOperator
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(recordType, key string) error {
	return &NotFoundError{Type: recordType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(recordType, key string) error {
	return &AlreadyExistsError{Type: recordType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewBootError creates a new BootError
func NewBootError(modelType, op string) error {
	return &BootError{Type: modelType, Op: op}
}

// NewStorageOperationError wraps err as a StorageOperationError
func NewStorageOperationError(op, partition string, err error) error {
	return &StorageOperationError{Op: op, Partition: partition, Err: err}
}

// NewUnknownPartitionError creates a new UnknownPartitionError
func NewUnknownPartitionError(partition string) error {
	return &UnknownPartitionError{Partition: partition}
}

// NewVersionError creates a new VersionError
func NewVersionError(database string, requested, stored int) error {
	return &VersionError{Database: database, Requested: requested, Stored: stored}
}

// NewInvalidOperatorError creates a new InvalidOperatorError
func NewInvalidOperatorError(field, operator string) error {
	return &InvalidOperatorError{Field: field, Operator: operator}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotBooted checks if an error is a boot error
func IsNotBooted(err error) bool {
	return errors.Is(err, ErrNotBooted)
}

// IsStorageNotInitialized checks if the gateway was used before Connect
func IsStorageNotInitialized(err error) bool {
	return errors.Is(err, ErrStorageNotInitialized)
}

// IsStorageOperation checks if an error came from the backing store
func IsStorageOperation(err error) bool {
	return errors.Is(err, ErrStorageOperation)
}

// IsUnknownPartition checks if an error names a partition outside the connection
func IsUnknownPartition(err error) bool {
	return errors.Is(err, ErrUnknownPartition)
}

// IsVersionError checks if an error is a version mismatch
func IsVersionError(err error) bool {
	return errors.Is(err, ErrVersion)
}

// IsInvalidOperator checks if an error is an invalid operator error
func IsInvalidOperator(err error) bool {
	return errors.Is(err, ErrInvalidOperator)
}

// classified reports whether err already carries one of this package's semantic kinds.
func classified(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrNotBooted,
		ErrStorageNotInitialized, ErrStorageOperation, ErrUnknownPartition,
		ErrVersion, ErrInvalidOperator,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// WrapStorage returns err unchanged when it is nil or already classified,
// otherwise it wraps it as a StorageOperationError.
func WrapStorage(op, partition string, err error) error {
	if err == nil || classified(err) {
		return err
	}
	return NewStorageOperationError(op, partition, err)
}
