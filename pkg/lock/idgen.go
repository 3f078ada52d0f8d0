package lock

import (
	"github.com/google/uuid"

	"github.com/aegiskit/aegis/pkg/util/xid"
)

// SonyflakeIDFunc adapts an xid.Generator (sonyflake-backed, k-sortable,
// low-collision) into the func() string WithLockIDFunc expects. On a
// generation error it falls back to uuid.NewString so Create never
// fails solely because the ID generator is momentarily unable to mint
// an ID (e.g. during a clock-backward wait).
func SonyflakeIDFunc(gen *xid.Generator) func() string {
	return func() string {
		if gen != nil {
			if s, err := gen.NewString(); err == nil {
				return s
			}
		}
		return uuid.NewString()
	}
}
