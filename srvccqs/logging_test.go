package decorator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/stretchr/testify/assert"
)

func TestWithCmdLogging(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
		wantLvl string
	}{
		{name: "success", err: nil, wantMsg: "command handled", wantLvl: "DEBUG"},
		{name: "validation", err: srvcerror.Validation("bad", "bad input"), wantMsg: "command rejected", wantLvl: "INFO"},
		{name: "storage", err: srvcerror.Storage(errors.New("s3 down")), wantMsg: "command failed", wantLvl: "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			ctx := logger.WithLogger(context.Background(), log)

			var got int
			h := WithCmdLogging[int]("double", CmdHandlerFunc[int](func(_ context.Context, p int) error {
				got = p * 2
				return tt.err
			}))

			err := h.Handle(ctx, 21)
			assert.Equal(t, tt.err, err)
			assert.Equal(t, 42, got)
			assert.Contains(t, buf.String(), "msg=\""+tt.wantMsg+"\"")
			assert.Contains(t, buf.String(), "level="+tt.wantLvl)
			assert.Contains(t, buf.String(), "cmd=double")
		})
	}
}
