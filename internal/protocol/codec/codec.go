package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/kang357/internal/protocol"
)

// 编解码器名称
const (
	JSON     = "json"
	Protobuf = "protobuf"
)

// ErrMissingType 消息缺少 type 字段
var ErrMissingType = errors.New("消息缺少 type 字段")

// Codec 负责消息信封与帧字节之间的转换。
// 信封内的 payload 始终是 JSON，二进制编码只作用于信封本身。
type Codec interface {
	Name() string
	// Binary 为 true 时应使用二进制帧发送
	Binary() bool
	Encode(msg *protocol.Message) ([]byte, error)
	// Decode 返回的消息来自对象池，用完后调用 PutMessage
	Decode(data []byte) (*protocol.Message, error)
}

// New 按名称创建编解码器，空名称默认为 JSON
func New(name string) (Codec, error) {
	switch name {
	case "", JSON:
		return jsonCodec{}, nil
	case Protobuf:
		return protobufCodec{}, nil
	default:
		return nil, fmt.Errorf("未知的编解码器: %q", name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return JSON }
func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Encode(msg *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(msg); err != nil {
		return nil, err
	}
	// Encoder 会追加换行
	data := buf.Bytes()
	return append([]byte(nil), data[:len(data)-1]...), nil
}

func (jsonCodec) Decode(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, ErrMissingType
	}
	return msg, nil
}

// protobufCodec 用 google.protobuf.Struct 承载信封：
// {"type": string, "payload": Struct}
type protobufCodec struct{}

func (protobufCodec) Name() string { return Protobuf }
func (protobufCodec) Binary() bool { return true }

func (protobufCodec) Encode(msg *protocol.Message) ([]byte, error) {
	fields := map[string]*structpb.Value{
		"type": structpb.NewStringValue(string(msg.Type)),
	}
	if len(msg.Payload) > 0 {
		var payload any
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, fmt.Errorf("解析 payload 失败: %w", err)
		}
		v, err := structpb.NewValue(payload)
		if err != nil {
			return nil, fmt.Errorf("转换 payload 失败: %w", err)
		}
		fields["payload"] = v
	}
	return proto.Marshal(&structpb.Struct{Fields: fields})
}

func (protobufCodec) Decode(data []byte) (*protocol.Message, error) {
	var envelope structpb.Struct
	if err := proto.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	msgType := envelope.GetFields()["type"].GetStringValue()
	if msgType == "" {
		return nil, ErrMissingType
	}

	msg := GetMessage()
	msg.Type = protocol.MessageType(msgType)
	if payload, ok := envelope.GetFields()["payload"]; ok {
		raw, err := json.Marshal(payload.AsInterface())
		if err != nil {
			PutMessage(msg)
			return nil, err
		}
		msg.Payload = raw
	}
	return msg, nil
}
