package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bz888/agent-relay/internal/logger"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TurnSender delivers one message to the relay and returns the reply.
type TurnSender interface {
	SendTurn(ctx context.Context, content string) (string, error)
}

type command int

const (
	cmdNone command = iota
	cmdHelp
	cmdQuit
	cmdDebug
	cmdClear
)

var commands = map[string]command{
	"/help":  cmdHelp,
	"/bye":   cmdQuit,
	"/quit":  cmdQuit,
	"/exit":  cmdQuit,
	"/debug": cmdDebug,
	"/clear": cmdClear,
}

var app *tview.Application

var (
	debugConsole *tview.TextView
	textView     *tview.TextView
	textArea     *tview.TextArea
	mainFlex     *tview.Flex
	debugVisible bool
	localLogger  *logger.Logger
)

func Init(dev bool) {
	app = tview.NewApplication()
	app.EnablePaste(true)
	app.EnableMouse(true)

	debugConsole = initDebugConsole()

	textView = initChatViewer()
	textArea = initChatInput()
	debugVisible = dev
}

func initChatViewer() *tview.TextView {
	textView := tview.NewTextView().
		SetChangedFunc(func() {
			app.Draw()
		}).
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	textView.SetTitle("Conversation").SetBorder(true)
	textView.SetScrollable(true)
	textView.ScrollToEnd()
	return textView
}

func initChatInput() *tview.TextArea {
	textArea := tview.NewTextArea()
	textArea.SetTitle("Message").SetBorder(true)
	return textArea
}

func initDebugConsole() *tview.TextView {
	console := tview.NewTextView().
		SetChangedFunc(func() {
			app.Draw()
		}).
		SetDynamicColors(false).
		SetWordWrap(true)

	console.SetTitle("Debugger").SetBorder(true)
	console.ScrollToEnd()
	return console
}

// Run blocks until the user quits.
func Run(sender TurnSender) error {
	if app == nil {
		return errors.New("ui not initialized")
	}
	localLogger = logger.NewLogger("views")

	textView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEnter {
			app.SetFocus(textArea)
		}
		return event
	})

	subFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(textView, 0, 1, false).
		AddItem(textArea, 5, 1, true)
	mainFlex = tview.NewFlex().
		AddItem(subFlex, 0, 2, true)

	if debugVisible {
		mainFlex.AddItem(debugConsole, 0, 1, false)
	}

	setInputCapture(sender)

	return app.SetRoot(mainFlex, true).SetFocus(textArea).Run()
}

func setInputCapture(sender TurnSender) {
	view := newTurnView()
	textArea.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyESC:
			if textView.GetText(false) != "" {
				app.SetFocus(textView)
			}
			return event
		case tcell.KeyEnter:
		default:
			return event
		}

		content := textArea.GetText()
		if strings.TrimSpace(content) == "" {
			return nil
		}
		textArea.SetText("", true)

		switch parseCommand(content) {
		case cmdHelp:
			fmt.Fprint(textView, helpText())
			return nil
		case cmdQuit:
			quitApp()
			return nil
		case cmdDebug:
			toggleDebugConsole()
			return nil
		case cmdClear:
			textView.Clear()
			return nil
		}

		view.send(sender, content)
		return nil
	})
}

func parseCommand(content string) command {
	return commands[strings.ToLower(strings.TrimSpace(content))]
}

func formatUser(content string) string {
	return fmt.Sprintf("[red::]You:[-]\n%s\n\n", tview.Escape(content))
}

func formatAgent(reply string) string {
	return fmt.Sprintf("[green::]Agent:[-]\n%s\n\n", tview.Escape(reply))
}

func formatError(err error) string {
	return fmt.Sprintf("[yellow::]Sorry, something went wrong:[-] %s\n\n", tview.Escape(err.Error()))
}

func helpText() string {
	var b strings.Builder
	b.WriteString("[green::]Agent:[-]\n")
	b.WriteString("Here are some commands you can use:\n")
	b.WriteString("- /help: Display this help message\n")
	b.WriteString("- /bye, /quit, /exit: Exit the application\n")
	b.WriteString("- /debug: Toggle the debug console\n")
	b.WriteString("- /clear: Clear the conversation\n\n")
	return b.String()
}

func toggleDebugConsole() {
	if debugVisible {
		mainFlex.RemoveItem(debugConsole)
		fmt.Fprintf(textView, "\nDebug console disabled\n")
	} else {
		mainFlex.AddItem(debugConsole, 0, 1, false)
		fmt.Fprintf(textView, "\nDebug console enabled\n")
	}
	debugVisible = !debugVisible
}

func quitApp() {
	fmt.Fprintf(textView, "Bye bye\n")
	localLogger.Close()
	app.Stop()
}

func GetDebugConsole() (*tview.TextView, error) {
	if debugConsole == nil {
		return nil, errors.New("debug console not initialized")
	}
	return debugConsole, nil
}
