package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"

	"github.com/quantumx/quantumx/pkg/chat"
	"github.com/quantumx/quantumx/pkg/client"
	"github.com/quantumx/quantumx/pkg/logger"
	"github.com/quantumx/quantumx/pkg/prefs"
	"github.com/quantumx/quantumx/pkg/ui"
)

const modeAuto = "auto"

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			r := newREPL(c, prefsStore(), cmd.OutOrStdout())

			historyDir := filepath.Dir(cfg.PrefsPath())
			if err := os.MkdirAll(historyDir, 0o700); err != nil {
				return err
			}
			rl, err := readline.NewFromConfig(&readline.Config{
				Prompt:          r.prompt(),
				HistoryFile:     filepath.Join(historyDir, "history"),
				InterruptPrompt: "^C",
				EOFPrompt:       "/quit",
			})
			if err != nil {
				return fmt.Errorf("starting line editor: %w", err)
			}
			defer rl.Close()

			r.greet(cfg.Engine.Name)
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if line == "" {
						return nil
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				if r.handle(cmd.Context(), line) {
					return nil
				}
				rl.SetPrompt(r.prompt())
			}
		},
	}
}

// repl holds the state of one terminal chat.
type repl struct {
	client   *client.Client
	prefs    *prefs.Store
	styles   ui.Styles
	mode     string
	out      io.Writer
	imageDir string
}

func newREPL(c *client.Client, store *prefs.Store, out io.Writer) *repl {
	p, err := store.Load()
	if err != nil {
		logger.WarnCF("chat", "Ignoring unreadable prefs", map[string]interface{}{"error": err.Error()})
	}
	return &repl{
		client:   c,
		prefs:    store,
		styles:   ui.NewStyles(p.Theme),
		mode:     modeAuto,
		out:      out,
		imageDir: ".",
	}
}

func (r *repl) prompt() string {
	return r.styles.User.Render(r.mode + "> ")
}

func (r *repl) greet(name string) {
	fmt.Fprintln(r.out, r.styles.Header(name, r.client.Status() == client.StatusOnline))
	fmt.Fprintln(r.out, r.styles.BotLine(chat.GreetingReply, false))
	fmt.Fprintln(r.out, r.styles.Muted.Render("/help para ver os comandos"))
}

// handle processes one input line and reports whether the session ends.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "/") {
		return r.command(line)
	}

	mode := chat.DetectMode(line)
	if r.mode != modeAuto {
		mode = chat.ParseMode(r.mode)
	}

	wasOnline := r.client.Status() == client.StatusOnline
	reply, err := r.client.Send(ctx, line, mode)
	if err != nil {
		fmt.Fprintln(r.out, r.styles.Error.Render(err.Error()))
		return false
	}

	online := r.client.Status() == client.StatusOnline
	if online != wasOnline {
		fmt.Fprintln(r.out, r.styles.Header("status", online))
	}
	fmt.Fprintln(r.out, r.styles.BotLine(reply.Text, reply.Fallback))
	if reply.ImageBase64 != "" {
		path, err := saveImage(r.imageDir, reply.ImageBase64)
		if err != nil {
			fmt.Fprintln(r.out, r.styles.Error.Render(err.Error()))
		} else {
			fmt.Fprintln(r.out, r.styles.Muted.Render("imagem salva em "+path))
		}
	}
	return false
}

func (r *repl) command(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/sair", "/exit":
		return true
	case "/text", "/texto":
		r.mode = string(chat.ModeText)
	case "/image", "/imagem":
		r.mode = string(chat.ModeImage)
	case "/auto":
		r.mode = modeAuto
	case "/theme", "/tema":
		r.switchTheme(fields[1:])
	case "/help", "/ajuda":
		r.help()
	default:
		fmt.Fprintln(r.out, r.styles.Error.Render("comando desconhecido: "+fields[0]))
	}
	return false
}

func (r *repl) switchTheme(args []string) {
	theme := r.styles.Theme.Toggle()
	if len(args) > 0 {
		parsed, err := prefs.ParseTheme(args[0])
		if err != nil {
			fmt.Fprintln(r.out, r.styles.Error.Render(err.Error()))
			return
		}
		theme = parsed
	}
	if _, err := r.prefs.SetTheme(theme); err != nil {
		logger.WarnCF("chat", "Could not save theme", map[string]interface{}{"error": err.Error()})
	}
	r.styles = ui.NewStyles(theme)
	fmt.Fprintln(r.out, r.styles.Muted.Render("tema: "+string(theme)))
}

func (r *repl) help() {
	lines := []string{
		"/text     força modo texto",
		"/image    força modo imagem",
		"/auto     detecta o modo pela mensagem",
		"/theme    alterna ou define o tema (dark|light)",
		"/quit     sai",
		"",
		"Sugestões:",
	}
	for _, qa := range chat.QuickActions {
		lines = append(lines, fmt.Sprintf("  %-16s %s", qa.Label, qa.Prompt))
	}
	fmt.Fprintln(r.out, r.styles.Muted.Render(strings.Join(lines, "\n")))
}
