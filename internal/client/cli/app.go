// Package cli implements the burner command-line client: creating notes
// and reading them exactly once.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/burnnote/burner/internal/client"
	"github.com/burnnote/burner/internal/client/config"
	"github.com/burnnote/burner/internal/common"
	"github.com/burnnote/burner/internal/cryptox"
	"github.com/burnnote/burner/internal/notes"
	"github.com/burnnote/burner/internal/randx"
	"github.com/burnnote/burner/internal/token"
)

// passwordAttempts bounds interactive retries on a wrong password.
const passwordAttempts = 3

// App wires user input, the lifecycle service and the terminal display.
type App struct {
	cfg *config.Config
	svc *notes.Service
	in  *bufio.Reader
	out io.Writer
}

func NewApp(cfg *config.Config, in io.Reader, out io.Writer) (*App, error) {
	kdf, err := cryptox.ParseKDF(cfg.KDF)
	if err != nil {
		return nil, err
	}

	opts := notes.Options{KDF: kdf}
	switch cfg.Mode {
	case "local":
		opts.Mode = token.ModeSelfContained
	case "remote":
		opts.Mode = token.ModeShortID
		opts.Remote = client.NewRemote(cfg.ServerURL, cfg.RequestTimeout)
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	svc, err := notes.NewService(opts)
	if err != nil {
		return nil, err
	}

	return &App{cfg: cfg, svc: svc, in: bufio.NewReader(in), out: out}, nil
}

// Run dispatches a subcommand: "create" or "read <token>".
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: burner <create|read> [token]")
	}

	switch args[0] {
	case "create":
		return a.create(ctx)
	case "read":
		if len(args) < 2 {
			return errors.New("usage: burner read <token>")
		}
		return a.read(ctx, args[1])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) create(ctx context.Context) error {
	text, err := GetMultiline(a.in, "Enter the note text:", a.out)
	if err != nil {
		return err
	}
	if text == "" {
		return errors.New("nothing to send")
	}

	password, err := GetPassword("Password (leave empty for a link-only note): ", a.out)
	if err != nil {
		return err
	}
	defer randx.Wipe(password)

	tok, expiresAt, err := a.svc.Create(ctx, []byte(text), password, a.cfg.DefaultTTL)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nShare this reference with the recipient:\n\n  %s\n\n", tok)
	fmt.Fprintf(a.out, "It can be viewed once, before %s.\n", expiresAt.Format(time.RFC1123))
	if len(password) > 0 {
		fmt.Fprintln(a.out, "Share the password over a separate channel.")
	}
	return nil
}

func (a *App) read(ctx context.Context, rawToken string) error {
	display := &terminalDisplay{w: a.out}

	consumer, err := notes.Open(a.svc, rawToken, display)
	if err != nil {
		if errors.Is(err, common.ErrNotAReference) {
			return errors.New("that does not look like a note reference")
		}
		return err
	}

	var password []byte
	defer func() { randx.Wipe(password) }()

	for attempt := 0; attempt < passwordAttempts; attempt++ {
		if consumer.NeedsSecret() {
			randx.Wipe(password)
			password, err = GetPassword("Enter password: ", a.out)
			if err != nil {
				return err
			}
		}

		err = consumer.Run(ctx, password)
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrAuthentication) || !consumer.NeedsSecret() {
			return err
		}
		// wrong password; the display already said so, prompt again
	}
	return err
}
