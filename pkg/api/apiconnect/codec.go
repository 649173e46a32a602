// Package apiconnect binds the hearthledger services to Connect handlers and
// clients. Messages are plain Go structs from package api, carried as JSON.
package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// CodecName is the Connect codec name; requests use Content-Type application/json.
const CodecName = "json"

// Codec marshals api messages with encoding/json. It replaces Connect's
// default JSON codec, which only accepts protobuf messages.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// withCodec is prepended to every handler and client built by this package.
var withCodec = connect.WithCodec(Codec{})
