package serde

import "errors"

var (
	// ErrSerialization is returned when no registered Transformer
	// claims a value passed to Registry.Serialize.
	ErrSerialization = errors.New("serde: no transformer applies to value")
	// ErrDeserialization is returned when no registered Transformer's
	// Name matches the discriminator passed to Registry.Deserialize.
	ErrDeserialization = errors.New("serde: no transformer registered for name")
)
