package domain

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBackupKey(t *testing.T) {
	Convey("Given an application name and a backup id", t, func() {
		Convey("BackupKey builds the archive path", func() {
			So(BackupKey("app1", "2024-01-01T00:00:00.000Z"), ShouldEqual, "backups/app1/2024-01-01T00:00:00.000Z.archive")
			So(BackupKey("app1", "d-ABC123"), ShouldEqual, "backups/app1/d-ABC123.archive")
		})

		Convey("BackupIDFromTime renders UTC with milliseconds", func() {
			ts := time.Date(2024, 1, 1, 2, 0, 0, 5_000_000, time.FixedZone("CET", 2*3600))
			So(BackupIDFromTime(ts), ShouldEqual, "2024-01-01T00:00:00.005Z")
		})
	})
}

func TestParseAction(t *testing.T) {
	Convey("Given raw action values", t, func() {
		Convey("Any case or whitespace variant of restore selects restore", func() {
			for _, raw := range []string{"restore", "Restore", " restore ", "RESTORE\n"} {
				So(ParseAction(raw), ShouldEqual, ActionRestore)
			}
		})

		Convey("Everything else selects backup", func() {
			for _, raw := range []string{"", "backup", "restored", "re store", "delete"} {
				So(ParseAction(raw), ShouldEqual, ActionBackup)
			}
		})
	})
}

func TestEventDecoding(t *testing.T) {
	Convey("Given a CodeDeploy event payload", t, func() {
		payload := `{"LifecycleEventHookExecutionId":"hook-1","DeploymentId":"d-1","ApplicationName":"app","Action":" Restore "}`

		var ev Event
		err := json.Unmarshal([]byte(payload), &ev)

		Convey("It should decode the received field names", func() {
			So(err, ShouldBeNil)
			So(ev.LifecycleEventHookExecutionID, ShouldEqual, "hook-1")
			So(ev.DeploymentID, ShouldEqual, "d-1")
			So(ev.ApplicationName, ShouldEqual, "app")
			So(ev.NormalizedAction(), ShouldEqual, ActionRestore)
		})
	})

	Convey("Given an event whose Action is not a string", t, func() {
		var ev Event
		err := json.Unmarshal([]byte(`{"ApplicationName":"app","Action":42}`), &ev)

		Convey("It should fall back to backup", func() {
			So(err, ShouldBeNil)
			So(ev.Action, ShouldEqual, ActionValue(""))
			So(ev.NormalizedAction(), ShouldEqual, ActionBackup)
		})
	})
}
