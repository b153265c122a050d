package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Cyclone1070/lmcode/internal/session"
)

// REPL is the interactive loop: read a line, dispatch slash commands, send
// everything else to the model.
type REPL struct {
	env      *Env
	session  *session.Session
	registry *Registry
	read     func() (string, error)
}

func NewREPL(env *Env, sess *session.Session) *REPL {
	if env == nil {
		panic("ui.NewREPL: env is required")
	}
	if sess == nil {
		panic("ui.NewREPL: session is required")
	}
	return &REPL{
		env:      env,
		session:  sess,
		registry: NewRegistry(),
		read:     ReadPrompt,
	}
}

// Run loops until the user quits or cancels, or a model call fails. The
// history snapshot is saved under the workspace on the way out.
func (r *REPL) Run(ctx context.Context) error {
	r.banner()

	for {
		line, err := r.read()
		if err != nil {
			if errors.Is(err, ErrInterrupted) {
				break
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if !r.registry.Execute(ctx, line, r.env) {
				break
			}
			continue
		}

		fmt.Fprint(r.env.Out, PromptStyle.Render("lmcode: "))
		response, err := r.session.Send(ctx, line, session.Options{})
		if err != nil {
			// A failed model call is fatal: the backend is gone or the model
			// rejected the request, and retrying in a loop helps nobody.
			r.env.Console.Errorf("Error communicating with backend: %v", err)
			r.env.Logger.Error("send failed", zap.Error(err))
			r.saveHistory()
			return err
		}
		r.env.LastResponse = response
	}

	r.saveHistory()
	return nil
}

func (r *REPL) banner() {
	welcome := fmt.Sprintf("# lmcode\n\nModel: `%s`\nWorkspace: `%s`\n\nType `/help` for commands.\n",
		r.env.Config.Provider.Model, r.env.Policy.WorkingDirectory())
	rendered, err := r.env.Renderer.Render(welcome)
	if err != nil {
		rendered = welcome
	}
	fmt.Fprint(r.env.Out, rendered)
}

func (r *REPL) saveHistory() {
	path := r.env.Config.History.HistoryFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.env.Policy.WorkingDirectory(), path)
	}
	if err := r.env.History.SaveToFile(path); err != nil {
		r.env.Logger.Warn("could not save history snapshot",
			zap.String("path", path), zap.Error(err))
		return
	}
	r.env.Logger.Info("history snapshot saved", zap.String("path", path))
}
