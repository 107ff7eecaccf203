/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("users", "123")

	expected := `users with key "123" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("products", "ABC")

	expected := `products with key "ABC" already exists`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsAlreadyExists(err) {
		t.Error("IsAlreadyExists should return true for AlreadyExistsError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "id",
			message:  "unsupported key type",
			expected: `validation failed for field "id": unsupported key type`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "missing required fields",
			expected: "validation failed: missing required fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}

			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestBootError(t *testing.T) {
	err := NewBootError("User", "save")

	expected := "cannot save User: model not booted"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	if !IsNotBooted(err) {
		t.Error("IsNotBooted should return true for BootError")
	}
}

func TestStorageOperationError(t *testing.T) {
	backendErr := errors.New("disk on fire")
	err := NewStorageOperationError("put", "users", backendErr)

	if !IsStorageOperation(err) {
		t.Error("StorageOperationError should match ErrStorageOperation")
	}

	if !errors.Is(err, backendErr) {
		t.Error("StorageOperationError should unwrap to the backend error")
	}

	var opErr *StorageOperationError
	if !errors.As(err, &opErr) || opErr.Partition != "users" || opErr.Op != "put" {
		t.Errorf("errors.As should expose op and partition, got %+v", opErr)
	}
}

func TestWrapStorage(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		if WrapStorage("get", "users", nil) != nil {
			t.Error("WrapStorage(nil) should be nil")
		}
	})

	t.Run("classified errors pass through", func(t *testing.T) {
		notFound := NewNotFoundError("users", "1")
		if got := WrapStorage("update", "users", notFound); got != notFound {
			t.Errorf("Expected NotFoundError to pass through, got %v", got)
		}
	})

	t.Run("backend errors are wrapped", func(t *testing.T) {
		got := WrapStorage("get", "users", errors.New("boom"))
		if !IsStorageOperation(got) {
			t.Errorf("Expected storage operation error, got %v", got)
		}
	})
}

func TestErrorWrapping(t *testing.T) {
	original := NewNotFoundError("users", "123")
	wrapped := fmt.Errorf("database operation failed: %w", original)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("Wrapped NotFoundError should still match ErrNotFound")
	}

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should work with wrapped errors")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrNotBooted,
		ErrStorageNotInitialized,
		ErrStorageOperation,
		ErrUnknownPartition,
		ErrVersion,
		ErrInvalidOperator,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}
