package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/semmidev/dbhook/internal/domain"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegram(t *testing.T) {
	Convey("Given a Telegram reporter", t, func() {
		bot := &fakeSender{}
		tg := &Telegram{bot: bot, chatID: 42}
		ctx := context.Background()

		outcome := domain.Outcome{
			Action:          domain.ActionBackup,
			ApplicationName: "storefront",
			Key:             "backups/storefront/d-1.archive",
			DeploymentID:    "d-1",
			Stats:           domain.TransferStats{Bytes: 3 * 1024 * 1024, Duration: 1500 * time.Millisecond},
		}

		Convey("When a backup succeeded", func() {
			err := tg.Report(ctx, outcome)

			Convey("It should send one message to the configured chat", func() {
				So(err, ShouldBeNil)
				So(len(bot.sent), ShouldEqual, 1)

				msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
				So(ok, ShouldBeTrue)
				So(msg.ChatID, ShouldEqual, int64(42))
				So(msg.Text, ShouldStartWith, "✅ Backup Completed")
				So(msg.Text, ShouldContainSubstring, "backups/storefront/d-1.archive")
				So(msg.Text, ShouldContainSubstring, "3.0 MiB")
				So(msg.Text, ShouldContainSubstring, "1.5s")
			})
		})

		Convey("When a restore failed", func() {
			outcome.Action = domain.ActionRestore
			outcome.Err = &domain.ExitError{Tool: "mongorestore", Code: 2}
			err := tg.Report(ctx, outcome)

			Convey("It should report the failure and the error", func() {
				So(err, ShouldBeNil)
				msg := bot.sent[0].(tgbotapi.MessageConfig)
				So(msg.Text, ShouldStartWith, "❌ Restore Failed")
				So(msg.Text, ShouldContainSubstring, "mongorestore failed with code: 2")
				So(msg.Text, ShouldNotContainSubstring, "Size")
			})
		})

		Convey("When the bot API fails", func() {
			bot.err = errors.New("Forbidden: bot was blocked by the user")
			err := tg.Report(ctx, outcome)

			Convey("It should return a wrapped error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "failed to send telegram notification")
			})
		})
	})

	Convey("Given an invalid chat id", t, func() {
		tg, err := NewTelegram("token", "not-a-number")

		Convey("It should fail before contacting Telegram", func() {
			So(tg, ShouldBeNil)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "invalid telegram chat id")
		})
	})
}
