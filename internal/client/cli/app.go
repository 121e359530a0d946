package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/scams/internal/client/client"
	"github.com/dmitrijs2005/scams/internal/client/config"
	"github.com/dmitrijs2005/scams/internal/client/session"
	"github.com/dmitrijs2005/scams/internal/logging"
)

type App struct {
	config  *config.Config
	db      *sql.DB
	session *session.Session
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	logger := logging.New(os.Stderr, "development", "error")
	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)

	a := &App{
		config: c,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	a.session = session.New(api, session.NewSQLiteStore(db), session.NotifierFunc(a.notify), logger)
	return a, nil
}

// notify prints a session notification as a single line.
func (a *App) notify(n session.Notification) {
	prefix := "✔"
	if n.Failure {
		prefix = "✘"
	}
	fmt.Fprintf(a.out, "%s %s: %s\n", prefix, n.Title, n.Description)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().State == session.Authenticated
}
