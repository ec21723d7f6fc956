package trash

import (
	"errors"
	"fmt"
)

// Errors returned by Relocate
var (
	// ErrNotFound is returned when a target does not exist
	ErrNotFound = errors.New("no such file or directory")

	// ErrForeignDirectory is returned when the backup trash path exists
	// but cannot be proven to belong to us
	ErrForeignDirectory = errors.New("backup trash directory is not ours")

	// ErrMoveFailed is returned when a target could not be moved into the backup trash
	ErrMoveFailed = errors.New("move failed")

	// ErrUnsafePath is returned for targets such as "." or "/"
	ErrUnsafePath = errors.New("refusing to remove unsafe path")

	// ErrProtectedPath is returned for targets matching a protected path or glob
	ErrProtectedPath = errors.New("refusing to remove protected path")
)

// Classification reported by SystemTrash implementations
var (
	// ErrPermissionDenied means the system trash refused the operation
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTrashCreationFailed means the system trash location itself could not be created
	ErrTrashCreationFailed = errors.New("trash directory could not be created")

	// ErrTargetNotFound means the system trash did not find a target
	ErrTargetNotFound = errors.New("target not found")
)

// SystemError is the structured error a SystemTrash returns.
// Kind is one of ErrPermissionDenied, ErrTrashCreationFailed or ErrTargetNotFound.
type SystemError struct {
	Kind error
	Path string
	Err  error
}

func (e *SystemError) Error() string {
	msg := "system trash: " + e.Kind.Error()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SystemError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewSystemError creates a new SystemError
func NewSystemError(kind error, path string, err error) error {
	return &SystemError{Kind: kind, Path: path, Err: err}
}

// TargetError ties a sentinel error to the target it concerns
type TargetError struct {
	Path string
	Err  error
}

func (e *TargetError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// ForeignDirectoryError explains why the backup trash was not trusted
type ForeignDirectoryError struct {
	Path   string
	Reason string
}

func (e *ForeignDirectoryError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrForeignDirectory, e.Path, e.Reason)
}

func (e *ForeignDirectoryError) Unwrap() error {
	return ErrForeignDirectory
}

// MoveError names the target whose move into the backup trash failed
type MoveError struct {
	Target string
	Dest   string
	Err    error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("%s: %s -> %s: %v", ErrMoveFailed, e.Target, e.Dest, e.Err)
}

func (e *MoveError) Unwrap() []error {
	return []error{ErrMoveFailed, e.Err}
}

// IsNotFound returns true if the error is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForeignDirectory returns true if the error is ErrForeignDirectory
func IsForeignDirectory(err error) bool {
	return errors.Is(err, ErrForeignDirectory)
}

// IsMoveFailed returns true if the error is ErrMoveFailed
func IsMoveFailed(err error) bool {
	return errors.Is(err, ErrMoveFailed)
}

// IsRecoverable reports whether a system trash failure may be handled by
// falling back to the backup trash.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrTrashCreationFailed)
}
