package tvg

import (
	"errors"
	"fmt"

	"github.com/gogpu/tvg/internal/font"
	"github.com/gogpu/tvg/internal/loader"
	"github.com/gogpu/tvg/internal/png"
)

// Result is the outcome category of an operation.
type Result uint8

const (
	Success Result = iota
	InvalidArgument
	InsufficientCondition
	FailedAllocation
	MemoryCorruption
	NotSupported
	Unknown
)

var resultNames = [...]string{
	"Success", "InvalidArgument", "InsufficientCondition", "FailedAllocation",
	"MemoryCorruption", "NotSupported", "Unknown",
}

func (r Result) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return fmt.Sprintf("Result(%d)", uint8(r))
}

// Sentinel errors, one per failing Result.
var (
	ErrInvalidArgument       = errors.New("tvg: invalid argument")
	ErrInsufficientCondition = errors.New("tvg: insufficient condition")
	ErrFailedAllocation      = errors.New("tvg: failed allocation")
	ErrMemoryCorruption      = errors.New("tvg: memory corruption")
	ErrNotSupported          = errors.New("tvg: not supported")
	ErrUnknown               = errors.New("tvg: unknown error")
)

var sentinels = [...]struct {
	err error
	res Result
}{
	{ErrInvalidArgument, InvalidArgument},
	{ErrInsufficientCondition, InsufficientCondition},
	{ErrFailedAllocation, FailedAllocation},
	{ErrMemoryCorruption, MemoryCorruption},
	{ErrNotSupported, NotSupported},
	{ErrUnknown, Unknown},
}

// ResultOf maps err to its Result. nil maps to Success and errors that wrap
// no sentinel map to Unknown.
func ResultOf(err error) Result {
	if err == nil {
		return Success
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.res
		}
	}
	return Unknown
}

// wrap attaches the sentinel for an error coming out of an internal
// package.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var sentinel error
	switch {
	case errors.Is(err, loader.ErrNotFound):
		sentinel = ErrInvalidArgument
	case errors.Is(err, loader.ErrNotSupported), errors.Is(err, png.ErrUnsupported):
		sentinel = ErrNotSupported
	case errors.Is(err, png.ErrTooLarge):
		sentinel = ErrFailedAllocation
	case errors.Is(err, png.ErrSettings), errors.Is(err, png.ErrSize):
		sentinel = ErrInvalidArgument
	case errors.Is(err, font.ErrInvalidFont):
		sentinel = ErrInvalidArgument
	default:
		sentinel = ErrUnknown
	}
	return fmt.Errorf("tvg: %s: %w: %w", op, sentinel, err)
}
