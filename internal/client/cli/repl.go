package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// Shell satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	EditProfile(ctx context.Context) error
	UploadPhoto(ctx context.Context, path string) error
	UploadVideo(ctx context.Context, path string) error
	Open(ctx context.Context, path string) error
	Click(ctx context.Context, href string) error
	Back(ctx context.Context) error
	Show(ctx context.Context, id string) error
}

// runREPL starts a read-eval-print loop over the page.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. The loop exits on EOF, when ctx is done, or
// when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help             show available commands
//	  - register         create an account
//	  - login            authenticate
//	  - open <path>      navigate in the page
//	  - click <href>     follow a link
//	  - back             go to the previous page
//	  - show [id]        print the page or one element
//	  - exit | quit      leave the program
//
//	Logged in, additionally:
//	  - whoami           show the signed-in user
//	  - profile          edit the profile
//	  - upload <file>    upload a profile photo
//	  - video <file>     upload a video
//	  - logout           log out
//
// Errors returned by command handlers are ignored here; handlers print and
// log their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("%s %s > ", promptStyle.Render("poputchiki"), statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, arg := parts[0], ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, profile, upload <file>, video <file>, open <path>, click <href>, back, show [id], logout, exit")
			} else {
				printlnFn("Available commands: register, login, open <path>, click <href>, back, show [id], exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "profile":
			_ = a.EditProfile(ctx)

		case "upload", "video":
			if arg == "" {
				printlnFn("Usage:", cmd, "<file>")
				continue
			}
			if cmd == "upload" {
				_ = a.UploadPhoto(ctx, arg)
			} else {
				_ = a.UploadVideo(ctx, arg)
			}

		case "open", "click":
			if arg == "" {
				printlnFn("Usage:", cmd, "<path>")
				continue
			}
			if cmd == "open" {
				_ = a.Open(ctx, arg)
			} else {
				_ = a.Click(ctx, arg)
			}

		case "back":
			_ = a.Back(ctx)

		case "show":
			_ = a.Show(ctx, arg)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
