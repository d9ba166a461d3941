package spark

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/lenshub/lenshub/pkg/ai"
	"github.com/lenshub/lenshub/pkg/ai/stream"
)

const wsReadLimit = 1 << 20

// WSStreamer streams chat completions over the vendor's signed WebSocket
// protocol. One dial serves one completion; the connection is closed on every
// return path.
type WSStreamer struct {
	cfg    Config
	signer *Signer
	log    *zap.Logger
	now    func() time.Time
}

// NewWSStreamer builds the WebSocket chat transport. It fails only on
// missing credentials.
func NewWSStreamer(cfg Config, log *zap.Logger) (*WSStreamer, error) {
	signer, err := NewSigner(cfg.Credentials)
	if err != nil {
		return nil, err
	}

	return &WSStreamer{
		cfg:    cfg.withDefaults(),
		signer: signer,
		log:    log,
		now:    time.Now,
	}, nil
}

func (w *WSStreamer) Name() string {
	return "spark-ws"
}

// StreamChat dials the signed endpoint, sends the single request frame, and
// folds response frames into agg until the final frame or an error.
func (w *WSStreamer) StreamChat(ctx context.Context, messages []ai.Message, agg *stream.Aggregator) (*ai.Usage, error) {
	authURL, err := w.signer.AuthURL(w.cfg.WSURL, w.now())
	if err != nil {
		return nil, &ai.TransportError{Op: "sign", Err: err}
	}

	conn, _, err := websocket.Dial(ctx, authURL, nil)
	if err != nil {
		return nil, &ai.TransportError{Op: "dial", Err: err}
	}
	defer conn.Close(websocket.StatusInternalError, "abandoned")
	conn.SetReadLimit(wsReadLimit)

	if err := w.writeRequest(ctx, conn, messages); err != nil {
		return nil, &ai.TransportError{Op: "send", Err: err}
	}

	usage, err := w.readFrames(ctx, conn, agg)
	if err != nil {
		return usage, err
	}

	conn.Close(websocket.StatusNormalClosure, "")
	return usage, nil
}

func (w *WSStreamer) writeRequest(ctx context.Context, conn *websocket.Conn, messages []ai.Message) error {
	req := chatRequest{
		Header: requestHeader{
			AppID: w.cfg.AppID,
			UID:   "user_" + strconv.FormatInt(w.now().UnixMilli(), 10),
		},
		Parameter: requestParameter{
			Chat: chatParameter{
				Domain:      w.cfg.Domain,
				Temperature: w.cfg.Temperature,
				MaxTokens:   w.cfg.MaxTokens,
			},
		},
		Payload: requestPayload{
			Message: requestMessage{Text: messages},
		},
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// readFrames consumes frames until the final status, a vendor error, or the
// socket closing. A close after partial content counts as completion; a
// vendor error after partial content fails the aggregator.
func (w *WSStreamer) readFrames(ctx context.Context, conn *websocket.Conn, agg *stream.Aggregator) (*ai.Usage, error) {
	var usage *ai.Usage

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if agg.ChannelClosed() {
				w.log.Debug("socket closed after partial content, treating as complete",
					zap.Int("bytes", agg.Len()))
				return usage, nil
			}
			return nil, &ai.TransportError{Op: "read", Err: err}
		}

		var frame chatFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			w.log.Debug("skipping malformed frame", zap.Error(err))
			continue
		}

		if frame.Header.Code != 0 {
			perr := &ai.ProviderError{Code: frame.Header.Code, Message: frame.Header.Message}
			if agg.Len() > 0 {
				agg.Fail(perr)
			}
			return nil, perr
		}

		if frame.Payload != nil {
			for _, t := range frame.Payload.Choices.Text {
				agg.Append(t.Content)
			}
			if u := frame.Payload.Usage.toUsage(); u != nil {
				usage = u
			}
		}

		if frame.Header.Status == statusFinal {
			agg.Complete()
			return usage, nil
		}
	}
}
