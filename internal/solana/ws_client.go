package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// SignatureResult is the notification payload of a signatureSubscribe.
type SignatureResult struct {
	Slot int64
	Err  interface{} // non-nil when the transaction failed on-chain
}

// ConfirmationClient waits for transaction settlement over the Solana
// WebSocket pubsub API. Each wait uses a dedicated connection: the
// subscription is single-shot and auto-cancelled by the node once fired.
type ConfirmationClient struct {
	endpoint     string
	dialTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConfirmationClient creates a new confirmation client.
func NewConfirmationClient(endpoint string) *ConfirmationClient {
	return &ConfirmationClient{
		endpoint:     endpoint,
		dialTimeout:  10 * time.Second,
		writeTimeout: 10 * time.Second,
	}
}

type wsNotification struct {
	Method string `json:"method"`
	Params struct {
		Subscription int64 `json:"subscription"`
		Result       struct {
			Context struct {
				Slot int64 `json:"slot"`
			} `json:"context"`
			Value struct {
				Err interface{} `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
	Result json.RawMessage `json:"result,omitempty"`
	ID     uint64          `json:"id,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

// AwaitSignature blocks until the signature reaches confirmed commitment or
// ctx expires. A transaction that failed on-chain is returned with a non-nil
// Err, not as a client error.
func (c *ConfirmationClient) AwaitSignature(ctx context.Context, signature string) (*SignatureResult, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.dialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial ws: %w", err)
	}
	defer conn.Close()

	sub := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			signature,
			map[string]interface{}{"commitment": "confirmed"},
		},
	}
	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var msg wsNotification
		if err := conn.ReadJSON(&msg); err != nil {
			return nil, fmt.Errorf("read notification: %w", err)
		}

		if msg.Error != nil {
			return nil, msg.Error
		}
		if msg.Method != "signatureNotification" {
			continue // subscription ack or unrelated frame
		}

		return &SignatureResult{
			Slot: msg.Params.Result.Context.Slot,
			Err:  msg.Params.Result.Value.Err,
		}, nil
	}
}
