package rpc

import "encoding/json"

// jsonCodec marshals RPC messages with encoding/json. Connect's stock JSON
// codec expects protobuf messages; registering this one under the same name
// makes handlers and clients speak application/json over plain structs.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	return json.Unmarshal(data, message)
}
