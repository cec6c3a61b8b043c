package natspool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arloliu/vigil/types"
)

// Wire subjects relative to the server's subject prefix.
const (
	helloSubject     = "hello"
	buildInfoSubject = "buildinfo"
)

// helloReply is the JSON body answered on the hello subject.
type helloReply struct {
	Role           string `json:"role"`
	ReadOnly       bool   `json:"readOnly"`
	MinWireVersion int32  `json:"minWireVersion"`
	MaxWireVersion int32  `json:"maxWireVersion"`
	MaxBatchSize   int32  `json:"maxBatchSize"`
}

// buildInfoReply is the JSON body answered on the buildinfo subject.
type buildInfoReply struct {
	Version string `json:"version"`
	GitSHA  string `json:"gitSha"`
}

// Protocol executes the status commands as NATS JSON request-reply.
type Protocol struct{}

// Compile-time assertion that Protocol implements types.Protocol.
var _ types.Protocol = (*Protocol)(nil)

// NewProtocol creates the NATS request-reply protocol.
func NewProtocol() *Protocol {
	return &Protocol{}
}

// Hello issues the status/handshake command.
func (p *Protocol) Hello(ctx context.Context, conn types.Connection) (*types.ServerInfo, error) {
	data, err := p.request(ctx, conn, helloSubject)
	if err != nil {
		return nil, err
	}

	var reply helloReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode hello reply: %w", err)
	}

	return &types.ServerInfo{
		Role:           types.Role(reply.Role),
		ReadOnly:       reply.ReadOnly,
		MinWireVersion: reply.MinWireVersion,
		MaxWireVersion: reply.MaxWireVersion,
		MaxBatchSize:   reply.MaxBatchSize,
		Raw:            data,
	}, nil
}

// BuildInfo issues the build/version command.
func (p *Protocol) BuildInfo(ctx context.Context, conn types.Connection) (*types.BuildInfo, error) {
	data, err := p.request(ctx, conn, buildInfoSubject)
	if err != nil {
		return nil, err
	}

	var reply buildInfoReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode buildInfo reply: %w", err)
	}

	return &types.BuildInfo{
		Version: reply.Version,
		GitSHA:  reply.GitSHA,
		Raw:     data,
	}, nil
}

// request sends one command request over conn's NATS connection under
// the deadline carried by ctx.
func (p *Protocol) request(ctx context.Context, conn types.Connection, subject string) ([]byte, error) {
	natsConn, ok := conn.(*Conn)
	if !ok {
		return nil, fmt.Errorf("natspool: unexpected connection type %T", conn)
	}

	if natsConn.nc.IsClosed() {
		return nil, types.ErrConnectionClosed
	}

	msg, err := natsConn.nc.RequestWithContext(ctx, natsConn.addr+"."+subject, nil)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", subject, err)
	}

	return msg.Data, nil
}
