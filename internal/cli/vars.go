package cli

import (
	"github.com/valter-silva-au/mail-triage/internal/agent"
	"github.com/valter-silva-au/mail-triage/internal/core"
	"github.com/valter-silva-au/mail-triage/internal/observability"
	"github.com/valter-silva-au/mail-triage/internal/storage"
	"github.com/valter-silva-au/mail-triage/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Cfg      *models.Config

	DataStore core.Store
	Overlay   *core.Overlay
	Ops       core.Operations
	Gateway   agent.Gateway
	Emails    storage.EmailLoader

	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
