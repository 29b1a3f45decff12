package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BackupIDLayout matches the ISO-8601 form produced for manual invocations.
const BackupIDLayout = "2006-01-02T15:04:05.000Z"

type Action string

const (
	ActionBackup  Action = "backup"
	ActionRestore Action = "restore"
)

// ParseAction selects restore only for a case/whitespace variant of "restore".
// Every other value, including empty, selects backup.
func ParseAction(s string) Action {
	if strings.ToLower(strings.TrimSpace(s)) == string(ActionRestore) {
		return ActionRestore
	}
	return ActionBackup
}

// Event is the invocation input, either from CodeDeploy or a manual trigger.
type Event struct {
	LifecycleEventHookExecutionID string      `json:"LifecycleEventHookExecutionId,omitempty"`
	DeploymentID                  string      `json:"DeploymentId,omitempty"`
	ApplicationName               string      `json:"ApplicationName,omitempty"`
	Action                        ActionValue `json:"Action,omitempty"`
}

// ActionValue holds the raw Action field. Non-string JSON values decode to "".
type ActionValue string

func (a *ActionValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*a = ""
		return nil
	}
	*a = ActionValue(s)
	return nil
}

func (e Event) NormalizedAction() Action {
	return ParseAction(string(e.Action))
}

// BackupKey is the object key an archive is stored under.
func BackupKey(applicationName, backupID string) string {
	return fmt.Sprintf("backups/%s/%s.archive", applicationName, backupID)
}

func BackupIDFromTime(t time.Time) string {
	return t.UTC().Format(BackupIDLayout)
}

type TransferStats struct {
	Bytes    int64
	Duration time.Duration
}
