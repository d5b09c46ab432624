package envserver

import "encoding/json"

// Codec connect的JSON编解码器，消息为普通Go结构体而非proto消息
// 说明：名称为"json"，覆盖connect内置的protojson编解码器，客户端与服务端都需通过connect.WithCodec注册
type Codec struct{}

func (Codec) Name() string                         { return "json" }
func (Codec) Marshal(msg any) ([]byte, error)      { return json.Marshal(msg) }
func (Codec) Unmarshal(data []byte, msg any) error { return json.Unmarshal(data, msg) }
