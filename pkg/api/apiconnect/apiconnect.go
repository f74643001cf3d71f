// Package apiconnect wires the api messages to Connect handlers and clients.
// Every handler and client is configured with api.JSONCodec.
package apiconnect

import (
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tandas/pkg/api"
)

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
}

func trimBase(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
