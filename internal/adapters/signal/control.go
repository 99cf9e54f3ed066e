package signal

import (
	"context"

	"github.com/dkeye/Huddle/internal/app/orch"
)

func (ctl *SignalWSController) handlePing(_ context.Context, s *session, _ []byte) error {
	ctl.reply(s, struct {
		Type string `json:"type"`
	}{
		Type: orch.EvPong,
	})
	return nil
}
