// Package codec provides the serialization used to persist client state
// (cart snapshots, search history) in a key-value store.
//
// Package codec 提供用于在键值存储中持久化客户端状态（购物车快照、搜索历史）的序列化。
package codec

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Codec defines the interface for encoding and decoding stored values.
//
// Codec 定义了编码和解码存储值的接口。
type Codec interface {
	// Marshal serializes a value into bytes.
	//
	// Marshal 将值序列化为字节。
	Marshal(value interface{}) ([]byte, error)

	// Unmarshal deserializes bytes into value, which must be a pointer.
	//
	// Unmarshal 将字节反序列化到value中，value必须是指针。
	Unmarshal(data []byte, value interface{}) error

	// Name returns the name of this codec.
	Name() string
}

// JSONCodec implements Codec using JSON serialization.
//
// JSONCodec 使用JSON序列化实现Codec。
type JSONCodec struct {
	// Pretty determines whether to use indented JSON encoding.
	Pretty bool
}

// Marshal serializes a value into JSON bytes.
func (c *JSONCodec) Marshal(value interface{}) ([]byte, error) {
	if c.Pretty {
		return json.MarshalIndent(value, "", "  ")
	}
	return json.Marshal(value)
}

// Unmarshal deserializes JSON bytes into a value.
func (c *JSONCodec) Unmarshal(data []byte, value interface{}) error {
	return json.Unmarshal(data, value)
}

// Name returns "json".
func (c *JSONCodec) Name() string {
	return "json"
}

// NewJSONCodec creates a new JSONCodec.
func NewJSONCodec(pretty bool) *JSONCodec {
	return &JSONCodec{Pretty: pretty}
}

// YAMLCodec implements Codec using YAML serialization.
// Struct fields need yaml tags to match their JSON names.
//
// YAMLCodec 使用YAML序列化实现Codec。
type YAMLCodec struct{}

// Marshal serializes a value into YAML bytes.
func (c *YAMLCodec) Marshal(value interface{}) ([]byte, error) {
	return yaml.Marshal(value)
}

// Unmarshal deserializes YAML bytes into a value.
func (c *YAMLCodec) Unmarshal(data []byte, value interface{}) error {
	return yaml.Unmarshal(data, value)
}

// Name returns "yaml".
func (c *YAMLCodec) Name() string {
	return "yaml"
}

// NewYAMLCodec creates a new YAMLCodec.
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// DefaultCodec returns the default codec (compact JSON).
//
// DefaultCodec 返回默认编解码器（紧凑JSON）。
func DefaultCodec() Codec {
	return NewJSONCodec(false)
}

// GetCodec returns a codec by name.
// Supported names: "json", "yaml".
//
// GetCodec 通过名称返回编解码器。
// 支持的名称："json"、"yaml"。
func GetCodec(name string) (Codec, error) {
	switch name {
	case "json", "":
		return NewJSONCodec(false), nil
	case "yaml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unknown codec: %s", name)
	}
}
