// Command pf is a CLI client for the PubliFlow service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/publiflow/publiflow-client/internal/api"
	"github.com/publiflow/publiflow-client/internal/config"
	"github.com/publiflow/publiflow-client/internal/crud"
	"github.com/publiflow/publiflow-client/internal/errs"
	"github.com/publiflow/publiflow-client/internal/model"
	"github.com/publiflow/publiflow-client/internal/nav"
	"github.com/publiflow/publiflow-client/internal/pager"
	"github.com/publiflow/publiflow-client/internal/session"
	"github.com/publiflow/publiflow-client/internal/store"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `pf CLI
Usage:
  pf [-v] <cmd> [args]

The API base address comes from PUBLIFLOW_BASE_URL (default %s).

Commands:
  version
  login      -email <email> -p <password>        (saves session)
  logout
  whoami
  feed       [-q <query>] [-pages <n>]
  post       -id <id>
  posts                                          (admin)
  posts-rm   -id <id>                            (admin)
  post-new   -title <t> -desc <d> [-hidden] [-image file]
  post-edit  -id <id> -title <t> -desc <d> [-hidden] [-image file]
  teachers                                       (admin)
  teachers-rm -id <id>                           (admin)
  students                                       (admin)
  students-rm -id <id>                           (admin)
  user       -id <id>                            (admin)
  user-new   -name <n> -email <e> -phone <p> -role <1|2> -p <password>
  user-edit  -id <id> -name <n> -email <e> -phone <p> -role <1|2> [-p <password>]
`, config.DefaultBaseURL)
	os.Exit(2)
}

// app bundles the wired components shared by all subcommands.
type app struct {
	cfg    *config.Config
	client *api.Client
	mgr    *session.Manager
	log    *zap.Logger
}

// main wires the components and dispatches subcommands.
func main() {
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := api.NewClient(cfg.BaseURL, cfg.HTTPTimeout, logger)
	mgr := session.NewManager(store.New(store.DefaultDir()), client, logger)
	mgr.Restore(ctx)

	a := &app{cfg: cfg, client: client, mgr: mgr, log: logger}

	switch cmd {

	case "version":
		fmt.Printf("pf %s (%s)\n", version, buildDate)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		pass := fs.String("p", "", "password")
		_ = fs.Parse(args)
		if *email == "" || *pass == "" {
			fmt.Fprintln(os.Stderr, "need -email and -p")
			os.Exit(1)
		}
		if err := mgr.SignIn(ctx, *email, *pass); err != nil {
			fail(err)
		}
		sess := mgr.Snapshot()
		fmt.Printf("signed in as %s (%s)\n", sess.User.FullName, sess.Role())

	case "logout":
		mgr.SignOut(ctx)
		fmt.Println("ok")

	case "whoami":
		sess := mgr.Snapshot()
		if !sess.Signed() {
			fmt.Println("not signed in")
			os.Exit(1)
		}
		printJSON(sess.User)

	case "feed":
		fs := flag.NewFlagSet("feed", flag.ExitOnError)
		q := fs.String("q", "", "search query")
		pages := fs.Int("pages", 1, "pages to load")
		_ = fs.Parse(args)
		a.runFeed(ctx, *q, *pages)

	case "post":
		fs := flag.NewFlagSet("post", flag.ExitOnError)
		id := fs.Int64("id", 0, "post id")
		_ = fs.Parse(args)
		if *id == 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		p, err := client.Post(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(p)

	case "posts":
		a.requireAdmin()
		a.listPosts(ctx)

	case "posts-rm":
		a.requireAdmin()
		a.deleteFromList(ctx, args, a.postsController())

	case "post-new", "post-edit":
		a.requireAdmin()
		a.editPost(ctx, cmd, args)

	case "teachers":
		a.requireAdmin()
		a.listUsers(ctx, model.RoleIDTeacher)

	case "teachers-rm":
		a.requireAdmin()
		a.deleteFromList(ctx, args, a.usersController(model.RoleIDTeacher))

	case "students":
		a.requireAdmin()
		a.listUsers(ctx, model.RoleIDStudent)

	case "students-rm":
		a.requireAdmin()
		a.deleteFromList(ctx, args, a.usersController(model.RoleIDStudent))

	case "user":
		a.requireAdmin()
		fs := flag.NewFlagSet("user", flag.ExitOnError)
		id := fs.Int64("id", 0, "user id")
		_ = fs.Parse(args)
		if *id == 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		u, err := client.User(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(u)

	case "user-new", "user-edit":
		a.requireAdmin()
		a.editUser(ctx, cmd, args)

	default:
		usage()
	}
}

// requireAdmin applies the route-guard decision for the gated area: signed
// out means back to the public area, i.e. login first.
func (a *app) requireAdmin() {
	if nav.Decide(a.mgr.Snapshot(), a.mgr.Loading(), true) == nav.DecisionToPublic {
		fmt.Fprintln(os.Stderr, "login required")
		os.Exit(1)
	}
	if a.mgr.Snapshot().Role() != model.RoleTeacher {
		fmt.Fprintln(os.Stderr, "admin area is teacher-only")
		os.Exit(1)
	}
}

// runFeed drives the feed fetcher: one refresh, then page-advances.
func (a *app) runFeed(ctx context.Context, query string, pages int) {
	f := pager.New(pager.Config[model.Post]{
		Fetch:  a.client.Feed,
		ID:     func(p model.Post) int64 { return p.ID },
		Limit:  a.cfg.PageSize,
		Logger: a.log,
		OnError: func(err error) {
			fmt.Fprintln(os.Stderr, err)
		},
	})
	defer f.Close()

	// No keystroke bursts to coalesce here; fetch the query synchronously.
	f.Search(ctx, query)
	for i := 1; i < pages && f.Snapshot().HasMore; i++ {
		f.LoadMore(ctx)
	}

	snap := f.Snapshot()
	printJSON(snap.Items)
	fmt.Fprintf(os.Stderr, "page %d, more=%v\n", snap.CurrentPage, snap.HasMore)
}

func (a *app) postsController() *crud.Controller[model.Post] {
	f := pager.New(pager.Config[model.Post]{
		Fetch:  api.AdminPostsPage(a.client),
		ID:     func(p model.Post) int64 { return p.ID },
		Logger: a.log,
	})
	return crud.NewController(f, a.client.DeletePost, a.log)
}

func (a *app) usersController(roleID int) *crud.Controller[model.AdminUser] {
	f := pager.New(pager.Config[model.AdminUser]{
		Fetch:  api.AdminUsersPage(a.client, roleID),
		ID:     func(u model.AdminUser) int64 { return u.ID },
		Logger: a.log,
	})
	return crud.NewController(f, a.client.DeleteUser, a.log)
}

func (a *app) listPosts(ctx context.Context) {
	c := a.postsController()
	c.Fetcher().FocusRegained(ctx)
	printJSON(c.Fetcher().Snapshot().Items)
}

func (a *app) listUsers(ctx context.Context, roleID int) {
	c := a.usersController(roleID)
	c.Fetcher().FocusRegained(ctx)
	printJSON(c.Fetcher().Snapshot().Items)
}

// deleteFromList stages and confirms a single deletion, then prints the
// refreshed list the confirmation produced.
func (a *app) deleteFromList(ctx context.Context, args []string, rm interface {
	RequestDelete(int64)
	ConfirmDelete(context.Context) error
}) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	id := fs.Int64("id", 0, "resource id")
	_ = fs.Parse(args)
	if *id == 0 {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}
	rm.RequestDelete(*id)
	if err := rm.ConfirmDelete(ctx); err != nil {
		fail(err)
	}
	fmt.Println("ok")
}

func (a *app) editPost(ctx context.Context, cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	id := fs.Int64("id", 0, "post id (edit only)")
	title := fs.String("title", "", "title")
	desc := fs.String("desc", "", "description")
	hidden := fs.Bool("hidden", false, "hide from the public feed")
	image := fs.String("image", "", "image file (optional)")
	_ = fs.Parse(args)
	if *title == "" || *desc == "" {
		fmt.Fprintln(os.Stderr, "need -title and -desc")
		os.Exit(1)
	}

	in := api.PostInput{Title: *title, Description: *desc, Visible: !*hidden}
	if *image != "" {
		content, err := os.ReadFile(*image)
		if err != nil {
			fail(err)
		}
		in.Image = &api.Upload{Name: *image, Content: content}
	}

	var (
		p   model.Post
		err error
	)
	if cmd == "post-edit" {
		if *id == 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		p, err = a.client.UpdatePost(ctx, *id, in)
	} else {
		p, err = a.client.CreatePost(ctx, in)
	}
	if err != nil {
		fail(mutation(err))
	}
	printJSON(p)
}

func (a *app) editUser(ctx context.Context, cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	id := fs.Int64("id", 0, "user id (edit only)")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email")
	phone := fs.String("phone", "", "phone")
	role := fs.Int("role", model.RoleIDStudent, "role id")
	pass := fs.String("p", "", "password (empty on edit keeps current)")
	_ = fs.Parse(args)
	if *name == "" || *email == "" {
		fmt.Fprintln(os.Stderr, "need -name and -email")
		os.Exit(1)
	}

	in := api.UserInput{FullName: *name, Email: *email, Phone: *phone, RoleID: *role, Password: *pass}
	var (
		u   model.AdminUser
		err error
	)
	if cmd == "user-edit" {
		if *id == 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		u, err = a.client.UpdateUser(ctx, *id, in)
	} else {
		if *pass == "" {
			fmt.Fprintln(os.Stderr, "need -p")
			os.Exit(1)
		}
		u, err = a.client.CreateUser(ctx, in)
	}
	if err != nil {
		fail(mutation(err))
	}
	printJSON(u)
}

// mutation maps a raw endpoint error to the mutation taxonomy, keeping the
// server message when present.
func mutation(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return fmt.Errorf("%w: %s", errs.ErrMutationFailed, apiErr.Message)
	}
	return fmt.Errorf("%w: %v", errs.ErrMutationFailed, err)
}

// ---- helpers ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
