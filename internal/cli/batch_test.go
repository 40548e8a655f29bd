package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/valter-silva-au/mail-triage/internal/agent"
)

type stubGateway struct{}

func (stubGateway) Process(context.Context, string, string) (agent.EventStream, error) {
	return nil, nil
}

func TestBatchCommandNilGateway(t *testing.T) {
	origGateway := Gateway
	defer func() { Gateway = origGateway }()
	Gateway = nil

	err := batchCmd.RunE(batchCmd, nil)
	if err == nil {
		t.Fatal("expected error with nil gateway")
	}
	if !strings.Contains(err.Error(), "agent gateway not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBatchCommandMissingCSV(t *testing.T) {
	origGateway := Gateway
	origCfg := Cfg
	defer func() {
		Gateway = origGateway
		Cfg = origCfg
	}()

	Gateway = stubGateway{}
	Cfg = nil

	err := batchCmd.RunE(batchCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "configuration not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}
