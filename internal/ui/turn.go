package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bz888/agent-relay/internal/logger"
)

// turnView runs one chat turn against the widget's surfaces. Everything
// after the send itself goes through queue so it lands on the UI goroutine.
type turnView struct {
	transcript      io.Writer
	setInputEnabled func(bool)
	queue           func(func())
	afterTurn       func()
	log             *logger.Logger
}

func newTurnView() *turnView {
	return &turnView{
		transcript:      textView,
		setInputEnabled: func(on bool) { textArea.SetDisabled(!on) },
		queue:           func(f func()) { app.QueueUpdateDraw(f) },
		afterTurn:       func() { app.SetFocus(textArea) },
		log:             logger.NewLogger("views"),
	}
}

// send starts a turn for content and reports whether one was started.
// Blank input is ignored.
func (v *turnView) send(sender TurnSender, content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}

	v.setInputEnabled(false)
	fmt.Fprint(v.transcript, formatUser(content))
	go func() {
		reply, err := sender.SendTurn(context.Background(), content)
		v.queue(func() {
			if err != nil {
				v.log.Err(err).Error("Chat turn failed")
				fmt.Fprint(v.transcript, formatError(err))
			} else {
				fmt.Fprint(v.transcript, formatAgent(reply))
			}
			v.setInputEnabled(true)
			if v.afterTurn != nil {
				v.afterTurn()
			}
		})
	}()
	return true
}
