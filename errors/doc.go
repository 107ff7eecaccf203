/*
Package errors provides semantic error types for modelstore.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound              = errors.New("record not found")
	    ErrAlreadyExists         = errors.New("record already exists")
	    ErrInvalidInput          = errors.New("invalid input")
	    ErrNotBooted             = errors.New("model not booted")
	    ErrStorageNotInitialized = errors.New("storage not initialized: call Connect first")
	    ErrStorageOperation      = errors.New("storage operation failed")
	    ErrUnknownPartition      = errors.New("unknown partition")
	    ErrVersion               = errors.New("database version mismatch")
	    ErrInvalidOperator       = errors.New("invalid comparison operator")
	)

Usage:

	user, err := users.Find(ctx, 42)
	if err != nil {
	    if errors.IsNotFound(err) {
	        return nil, fmt.Errorf("user %d does not exist", 42)
	    }
	    return nil, err
	}

Failures reported by a backend are wrapped in StorageOperationError, which
unwraps to the original backend error:

	var opErr *errors.StorageOperationError
	if stderrors.As(err, &opErr) {
	    log.Printf("%s on %s: %v", opErr.Op, opErr.Partition, opErr.Err)
	}
*/
package errors
