package keys

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

const defaultAgentTimeout = 10 * time.Second

// AgentClient talks to a signing agent over a unix socket. Requests and
// responses are msgpack-encoded; the agent never releases raw key bytes.
type AgentClient struct {
	socketPath string
}

// NewAgentClient returns a client for the agent listening on socketPath.
func NewAgentClient(socketPath string) *AgentClient {
	return &AgentClient{socketPath: socketPath}
}

type agentRequest struct {
	Op     string `msgpack:"op"`
	KeyID  string `msgpack:"key_id,omitempty"`
	Digest []byte `msgpack:"digest,omitempty"`
}

type agentResponse struct {
	Signature []byte `msgpack:"signature,omitempty"`
	PublicKey string `msgpack:"public_key,omitempty"`
	Error     string `msgpack:"error,omitempty"`
}

// Sign asks the agent to sign a 32-byte digest with the named key.
func (c *AgentClient) Sign(ctx context.Context, keyID string, digest []byte) ([]byte, error) {
	resp, err := c.roundTrip(ctx, agentRequest{Op: "sign", KeyID: keyID, Digest: digest})
	if err != nil {
		return nil, err
	}
	if len(resp.Signature) == 0 {
		return nil, errors.New("agent returned an empty signature")
	}
	return resp.Signature, nil
}

// PublicKey asks the agent for the hex-encoded public key of the named key.
func (c *AgentClient) PublicKey(ctx context.Context, keyID string) (string, error) {
	resp, err := c.roundTrip(ctx, agentRequest{Op: "public-key", KeyID: keyID})
	if err != nil {
		return "", err
	}
	if resp.PublicKey == "" {
		return "", errors.New("agent returned an empty public key")
	}
	return resp.PublicKey, nil
}

func (c *AgentClient) roundTrip(ctx context.Context, req agentRequest) (*agentResponse, error) {
	var d net.Dialer

	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, errors.Wrap(err, "dial signing agent")
	}
	defer conn.Close()

	deadline := time.Now().Add(defaultAgentTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, errors.Wrap(err, "set agent deadline")
	}

	if err := msgpack.NewEncoder(conn).Encode(req); err != nil {
		return nil, errors.Wrap(err, "encode agent request")
	}

	var resp agentResponse
	if err := msgpack.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, errors.Wrap(err, "decode agent response")
	}

	if resp.Error != "" {
		return nil, errors.Errorf("agent error: %s", resp.Error)
	}

	return &resp, nil
}
