package setassoc

import "fmt"

type constError string

// ErrInvalidSize may be returned from [NewDirectMapped] and [NewSetAssociative].
const ErrInvalidSize = constError("invalid size")

func (errStr constError) Error() string { return string(errStr) }

func checkSize(size, minimum int) error {
	switch {
	case size < minimum:
		return fmt.Errorf(
			"%w: must be >=%d but %d was requested",
			ErrInvalidSize, minimum, size)
	case uint64(size) > MaximumSize:
		return fmt.Errorf(
			"%w: must be <=%d but %d was requested",
			ErrInvalidSize, uint64(MaximumSize), size)
	case size&(size-1) != 0:
		return fmt.Errorf(
			"%w: must be a power of two but %d was requested",
			ErrInvalidSize, size)
	}
	return nil
}
