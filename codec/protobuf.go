package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

var errNoCtor = errors.New("codec: protobuf codec needs a message constructor")

// Protobuf serializes proto messages. T is the pointer message type, e.g. *pb.User.
type Protobuf[T proto.Message] struct {
	newMsg func() T
}

// NewProtobuf builds the codec; ctor returns an empty message to decode into,
// e.g. func() *pb.User { return &pb.User{} }.
func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{newMsg: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	// deterministic so equal messages in both buffers frame to equal bytes
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	if c.newMsg == nil {
		var zero T
		return zero, errNoCtor
	}
	m := c.newMsg()
	err := proto.Unmarshal(b, m)
	return m, err
}
