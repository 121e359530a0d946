package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/scams/internal/client/session"
)

// now is replaced in tests.
var now = time.Now

// getStatus is the prompt badge: the user's initials and role once signed
// in, empty otherwise.
func (a *App) getStatus() string {
	snap := a.session.Snapshot()
	if snap.State != session.Authenticated || snap.Identity == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s) ", snap.Identity.Initials(), snap.Identity.Role)
}

// printHeader prints the title line and, when signed in, who is signed in.
func (a *App) printHeader() {
	a.println("Smart Campus System,", now().Format("Monday, January 2, 2006"))
	if id := a.session.Snapshot().Identity; id != nil {
		a.println(fmt.Sprintf("[%s] %s (%s)", id.Initials(), id.Name, id.Role))
	}
}

func (a *App) Root(ctx context.Context) {

	a.println("Welcome to SCAMS CLI (type 'help' for commands)")

	rctx, cancel := ctx, context.CancelFunc(func() {})
	if a.config.RequestTimeout > 0 {
		rctx, cancel = context.WithTimeout(ctx, a.config.RequestTimeout)
	}
	if err := a.session.Resolve(rctx); err != nil {
		a.println("Stored session could not be restored:", session.Describe(err))
	}
	cancel()

	if a.isLoggedIn() {
		a.printHeader()
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
